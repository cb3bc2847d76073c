package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// Storage backend names accepted by StorageType.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageDynamoDB = "dynamodb"
	StorageMongoDB  = "mongodb"
	StorageS3       = "s3"
	StorageSQLite   = "sqlite"
	StorageFile     = "filesystem"
)

// Config holds all configuration options for the flashclip server
type Config struct {
	// Server configuration
	Port int

	// Storage configuration
	StorageType  string // memory, redis, dynamodb, mongodb, s3, sqlite, filesystem
	StoreTimeout time.Duration

	RedisURL       string
	RedisKeyPrefix string

	DynamoDBTable string
	AWSRegion     string

	MongoDBURI        string
	MongoDBDatabase   string
	MongoDBCollection string

	S3Bucket string
	S3Prefix string

	SQLitePath string
	DataDir    string

	// Clip configuration
	IDFormat       string        // uuid or ulid
	MinTTL         time.Duration // 0 disables the lower bound
	MaxTTL         time.Duration // 0 disables the upper bound
	MaxContentSize int64         // maximum request body in bytes

	// Operational configuration
	LogLevel  string
	LogFile   string
	AccessLog string

	// Feature flags
	EnableWebUI   bool
	EnableMetrics bool

	// Build info, set by the entrypoints
	Version    string
	BuildTime  string
	CommitHash string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Port:              8080,
		StorageType:       StorageMemory,
		StoreTimeout:      10 * time.Second,
		RedisURL:          "redis://localhost:6379/0",
		RedisKeyPrefix:    "clip:",
		DynamoDBTable:     "flashclip-clips",
		AWSRegion:         "",
		MongoDBURI:        "mongodb://localhost:27017",
		MongoDBDatabase:   "flashclip",
		MongoDBCollection: "clips",
		S3Prefix:          "clips/",
		SQLitePath:        "./flashclip.db",
		DataDir:           "./data",
		IDFormat:          "uuid",
		MaxContentSize:    5 * 1024 * 1024, // 5MB
		LogLevel:          "info",
		EnableWebUI:       true,
		EnableMetrics:     true,
		Version:           "dev",
		BuildTime:         "unknown",
		CommitHash:        "none",
	}
}

// LoadFromEnv returns DefaultConfig overridden by FLASHCLIP_* environment
// variables. Unparseable values are reported rather than silently ignored.
func LoadFromEnv() (*Config, error) {
	cfg := DefaultConfig()

	var err error
	if cfg.Port, err = getEnvInt("FLASHCLIP_PORT", cfg.Port); err != nil {
		return nil, err
	}
	cfg.StorageType = getEnvString("FLASHCLIP_STORAGE_TYPE", cfg.StorageType)
	cfg.RedisURL = getEnvString("FLASHCLIP_REDIS_URL", cfg.RedisURL)
	cfg.RedisKeyPrefix = getEnvString("FLASHCLIP_REDIS_KEY_PREFIX", cfg.RedisKeyPrefix)
	cfg.DynamoDBTable = getEnvString("FLASHCLIP_DYNAMODB_TABLE", cfg.DynamoDBTable)
	cfg.AWSRegion = getEnvString("FLASHCLIP_AWS_REGION", cfg.AWSRegion)
	cfg.MongoDBURI = getEnvString("FLASHCLIP_MONGODB_URI", cfg.MongoDBURI)
	cfg.MongoDBDatabase = getEnvString("FLASHCLIP_MONGODB_DATABASE", cfg.MongoDBDatabase)
	cfg.MongoDBCollection = getEnvString("FLASHCLIP_MONGODB_COLLECTION", cfg.MongoDBCollection)
	cfg.S3Bucket = getEnvString("FLASHCLIP_S3_BUCKET", cfg.S3Bucket)
	cfg.S3Prefix = getEnvString("FLASHCLIP_S3_PREFIX", cfg.S3Prefix)
	cfg.SQLitePath = getEnvString("FLASHCLIP_SQLITE_PATH", cfg.SQLitePath)
	cfg.DataDir = getEnvString("FLASHCLIP_DATA_DIR", cfg.DataDir)
	cfg.IDFormat = getEnvString("FLASHCLIP_ID_FORMAT", cfg.IDFormat)
	if cfg.MaxContentSize, err = getEnvInt64("FLASHCLIP_MAX_CONTENT_SIZE", cfg.MaxContentSize); err != nil {
		return nil, err
	}
	cfg.LogLevel = getEnvString("FLASHCLIP_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnvString("FLASHCLIP_LOG_FILE", cfg.LogFile)
	cfg.AccessLog = getEnvString("FLASHCLIP_ACCESS_LOG", cfg.AccessLog)
	if cfg.EnableWebUI, err = getEnvBool("FLASHCLIP_ENABLE_WEBUI", cfg.EnableWebUI); err != nil {
		return nil, err
	}
	if cfg.EnableMetrics, err = getEnvBool("FLASHCLIP_ENABLE_METRICS", cfg.EnableMetrics); err != nil {
		return nil, err
	}

	if cfg.StoreTimeout, err = getEnvDuration("FLASHCLIP_STORE_TIMEOUT", cfg.StoreTimeout); err != nil {
		return nil, err
	}
	if cfg.MinTTL, err = getEnvDuration("FLASHCLIP_MIN_TTL", cfg.MinTTL); err != nil {
		return nil, err
	}
	if cfg.MaxTTL, err = getEnvDuration("FLASHCLIP_MAX_TTL", cfg.MaxTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis url cannot be empty")
		}
	case StorageDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("dynamodb table cannot be empty")
		}
	case StorageMongoDB:
		if c.MongoDBURI == "" || c.MongoDBDatabase == "" || c.MongoDBCollection == "" {
			return fmt.Errorf("mongodb uri, database and collection are required")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite path cannot be empty")
		}
	case StorageFile:
		if c.DataDir == "" {
			return fmt.Errorf("data directory cannot be empty")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (valid: memory, redis, dynamodb, mongodb, s3, sqlite, filesystem)", c.StorageType)
	}

	if c.IDFormat != "uuid" && c.IDFormat != "ulid" {
		return fmt.Errorf("invalid id format: %s (valid: uuid, ulid)", c.IDFormat)
	}

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("store timeout must be positive: %v", c.StoreTimeout)
	}

	if c.MinTTL < 0 || c.MaxTTL < 0 {
		return fmt.Errorf("ttl bounds cannot be negative")
	}
	if c.MinTTL > 0 && c.MaxTTL > 0 && c.MinTTL > c.MaxTTL {
		return fmt.Errorf("min ttl %v is greater than max ttl %v", c.MinTTL, c.MaxTTL)
	}

	if c.MaxContentSize < 1024 || c.MaxContentSize > 100*1024*1024 {
		return fmt.Errorf("max content size must be between 1KB and 100MB: %d", c.MaxContentSize)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// ParseDuration accepts Go durations plus day and week units ("7d", "1w2d").
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return intValue, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return intValue, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
	return boolValue, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
