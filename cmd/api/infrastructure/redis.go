package infrastructure

import (
	"fmt"

	"mongo-user-service/internal/config"
	redisclient "mongo-user-service/pkg/redis"

	"go.uber.org/zap"
)

// NewRedisClient creates the Redis client used by the rate limiter.
// When rate limiting is disabled no connection is opened.
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.RateLimit.Enabled {
		l.Info("rate limiting disabled, skipping Redis connection")
		return nil, nil
	}

	client, err := redisclient.NewClient(redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return client, nil
}
