package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "PORT", "JWT_ACCESS_TTL", "JWT_REFRESH_TTL", "CLASSIFIER_TIMEOUT",
		"REVOCATION_BACKEND", "UPLOADS_DIR", "MAX_UPLOAD_BYTES", "DB_MIGRATE_ON_START", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Empty(t, cfg.LogLevel)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 10*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, "postgres", cfg.RevocationBackend)
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, 10*1024*1024, cfg.MaxUploadBytes)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("CLASSIFIER_TIMEOUT", "3s")
	t.Setenv("REVOCATION_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("UPLOADS_DIR", "./data/uploads/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 3*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, "redis", cfg.RevocationBackend)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "data/uploads", cfg.UploadsDir)
}

func TestLoad_ReportsAllInvalidValues(t *testing.T) {
	t.Setenv("PORT", "http")
	t.Setenv("JWT_REFRESH_TTL", "forever")
	t.Setenv("REVOCATION_BACKEND", "memcached")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "JWT_REFRESH_TTL")
	assert.Contains(t, err.Error(), "REVOCATION_BACKEND")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET_KEY", "s3cr3t-value")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDev())
}
