package infrastructure

import (
	"context"
	"fmt"
	"time"

	"mongo-user-service/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// NewMongoDatabase connects to MongoDB, verifies the connection and returns
// the client together with the users collection. The unique index on email
// is ensured here so the storage layer can enforce the uniqueness invariant
// from the first insert on.
func NewMongoDatabase(ctx context.Context, cfg *config.Config, l *zap.Logger) (*mongodriver.Client, *mongodriver.Collection, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongodriver.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	col := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)

	if err := ensureIndexes(connectCtx, col); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	l.Info("MongoDB connected successfully",
		zap.String("database", cfg.Mongo.Database),
		zap.String("collection", cfg.Mongo.Collection),
	)

	return client, col, nil
}

// ensureIndexes creates the unique index on email. CreateOne is a no-op
// when the index already exists with the same definition.
func ensureIndexes(ctx context.Context, col *mongodriver.Collection) error {
	_, err := col.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to ensure unique email index: %w", err)
	}
	return nil
}

// CloseDatabase disconnects the MongoDB client.
func CloseDatabase(ctx context.Context, client *mongodriver.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close MongoDB connection: %w", err)
	}
	return nil
}
