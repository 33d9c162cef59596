package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewMongoDatabase connects to MongoDB, verifies the connection, ensures the
// uniqueness indexes the portal relies on, and ties disconnect to the fx
// lifecycle.
func NewMongoDatabase(lc fx.Lifecycle, cfg *Config, logger *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	logger.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))

	db := client.Database(cfg.MongoDatabase)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(stopCtx context.Context) error {
			logger.Info("closing mongodb connection")
			return client.Disconnect(stopCtx)
		},
	})
	return db, nil
}

// ensureIndexes creates the unique email index and the sparse unique student
// id index. Sparse keeps absent student ids from colliding with each other.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	users := db.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"email": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.M{"student.student_id": 1},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}
