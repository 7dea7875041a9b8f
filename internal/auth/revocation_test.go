package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldoetobex/legal-case-backend/internal/testutil"
)

// exerciseStore checks the behaviour every RevocationStore must share.
func exerciseStore(t *testing.T, s RevocationStore) {
	t.Helper()
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := s.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, jti, time.Now()))
	require.NoError(t, s.Revoke(ctx, jti, time.Now().Add(time.Minute)))

	revoked, err = s.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestGormRevocationStore_Integration(t *testing.T) {
	db := testutil.OpenPostgres(t)
	exerciseStore(t, NewGormRevocationStore(db))
}

func TestRedisRevocationStore_Integration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	exerciseStore(t, NewRedisRevocationStore(rdb))
}

func TestMemRevocations_SharedBehaviour(t *testing.T) {
	exerciseStore(t, newMemRevocations())
}
