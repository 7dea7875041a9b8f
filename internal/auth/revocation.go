package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

// RevocationStore is the set of explicitly invalidated token ids.
// Entries are never evicted.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, at time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

/* =============================== Postgres =============================== */

type GormRevocationStore struct{ db *gorm.DB }

func NewGormRevocationStore(db *gorm.DB) *GormRevocationStore {
	return &GormRevocationStore{db: db}
}

func (s *GormRevocationStore) Revoke(ctx context.Context, jti string, at time.Time) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{JTI: jti, RevokedAt: at}).Error
}

func (s *GormRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&n).Error
	return n > 0, err
}

/* ================================ Redis ================================= */

const redisRevokedPrefix = "revoked:"

// RedisRevocationStore keeps one key per jti, valued with the unix revocation time.
type RedisRevocationStore struct{ rdb *redis.Client }

func NewRedisRevocationStore(rdb *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, at time.Time) error {
	// SETNX keeps the first revocation time
	return s.rdb.SetNX(ctx, redisRevokedPrefix+jti, at.Unix(), 0).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, redisRevokedPrefix+jti).Result()
	return n > 0, err
}
