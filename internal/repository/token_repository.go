package repository

import (
	"complaint_tracker_backend/internal/util"
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenBlacklist records revoked token ids until they would have expired
// anyway. With a nil client revocation is disabled and every token is live.
type TokenBlacklist struct {
	RDB *redis.Client
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{RDB: rdb}
}

func (b *TokenBlacklist) Enabled() bool {
	return b != nil && b.RDB != nil
}

func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if !b.Enabled() || jti == "" || ttl <= 0 {
		return nil
	}
	if err := b.RDB.Set(ctx, revokedTokenPrefix+jti, 1, ttl).Err(); err != nil {
		return util.NewInternalError("revoke token", err)
	}
	return nil
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !b.Enabled() || jti == "" {
		return false, nil
	}
	n, err := b.RDB.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, util.NewInternalError("check revoked token", err)
	}
	return n > 0, nil
}
