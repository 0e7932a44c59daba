package database

import (
	"complaint_tracker_backend/internal/config"
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InitRedis returns nil without error when redis is disabled.
func InitRedis(cfg *config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		log.Info("Redis disabled, token revocation off")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("Redis connection established", zap.String("addr", rdb.Options().Addr))
	return rdb, nil
}

// RedisPinger adapts a redis client to the health check.
type RedisPinger struct {
	RDB *redis.Client
}

func (p RedisPinger) PingContext(ctx context.Context) error {
	return p.RDB.Ping(ctx).Err()
}
