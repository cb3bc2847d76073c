package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/johnwmail/flashclip/internal/config"
)

// NewStorage creates a storage backend based on the configuration
func NewStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StorageType {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; clips are lost on restart")
		return NewMemoryStore(), nil

	case config.StorageRedis:
		logger.Info("Using Redis storage", "key_prefix", cfg.RedisKeyPrefix)
		return NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)

	case config.StorageDynamoDB:
		logger.Info("Using DynamoDB storage", "table", cfg.DynamoDBTable, "region", cfg.AWSRegion)
		return NewDynamoStore(ctx, cfg.DynamoDBTable, cfg.AWSRegion)

	case config.StorageMongoDB:
		logger.Info("Using MongoDB storage",
			"database", cfg.MongoDBDatabase,
			"collection", cfg.MongoDBCollection)
		return NewMongoStore(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase, cfg.MongoDBCollection)

	case config.StorageS3:
		logger.Info("Using S3 storage", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion)

	case config.StorageSQLite:
		logger.Info("Using SQLite storage", "path", cfg.SQLitePath)
		return NewSQLiteStore(ctx, cfg.SQLitePath)

	case config.StorageFile:
		logger.Info("Using filesystem storage", "path", cfg.DataDir)
		return NewFileStore(cfg.DataDir)

	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: memory, redis, dynamodb, mongodb, s3, sqlite, filesystem)", cfg.StorageType)
	}
}
