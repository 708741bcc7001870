package di

import (
	"context"
	"fmt"
	"time"

	"mongo-user-service/cmd/api/infrastructure"
	mongoadapter "mongo-user-service/internal/adapter/db/mongo"
	ginhandler "mongo-user-service/internal/adapter/gin/handler"
	"mongo-user-service/internal/adapter/gin/middleware"
	"mongo-user-service/internal/config"
	"mongo-user-service/internal/usecase/user"
	redisclient "mongo-user-service/pkg/redis"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	MongoClient *mongodriver.Client
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize MongoDB and the users collection
	mongoClient, usersCol, err := infrastructure.NewMongoDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis for the rate limiter; nil when rate limiting is off
	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(context.Background(), mongoClient)
		return nil, err
	}

	// Initialize repository and use case
	repo := mongoadapter.NewUserRepoMongo(usersCol, l)
	userUC := user.New(repo, l)

	// Initialize rate limiter
	var rateLimiter *middleware.RateLimiter
	if rdb != nil {
		rateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				WindowSeconds:     cfg.RateLimit.WindowSeconds,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	// Initialize Gin handler
	ginHandler := ginhandler.NewUserHandler(userUC, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		MongoClient: mongoClient,
		RedisClient: rdb,
		UserUC:      userUC,
		RateLimiter: rateLimiter,
		GinHandler:  ginHandler,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close MongoDB connection
	if c.MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := infrastructure.CloseDatabase(ctx, c.MongoClient); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
