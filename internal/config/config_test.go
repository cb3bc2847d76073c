package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}

	if cfg.StorageType != StorageMemory {
		t.Errorf("Expected default storage type 'memory', got %s", cfg.StorageType)
	}

	if cfg.IDFormat != "uuid" {
		t.Errorf("Expected default id format 'uuid', got %s", cfg.IDFormat)
	}

	if cfg.MinTTL != 0 || cfg.MaxTTL != 0 {
		t.Errorf("Expected ttl bounds disabled by default, got min=%v max=%v", cfg.MinTTL, cfg.MaxTTL)
	}

	if cfg.MaxContentSize != 5*1024*1024 {
		t.Errorf("Expected default max content size 5MB, got %d", cfg.MaxContentSize)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level 'info', got %s", cfg.LogLevel)
	}

	if !cfg.EnableWebUI {
		t.Error("Expected EnableWebUI to be true by default")
	}

	if !cfg.EnableMetrics {
		t.Error("Expected EnableMetrics to be true by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FLASHCLIP_PORT", "9090")
	t.Setenv("FLASHCLIP_STORAGE_TYPE", "redis")
	t.Setenv("FLASHCLIP_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("FLASHCLIP_ID_FORMAT", "ulid")
	t.Setenv("FLASHCLIP_MIN_TTL", "60s")
	t.Setenv("FLASHCLIP_MAX_TTL", "7d")
	t.Setenv("FLASHCLIP_STORE_TIMEOUT", "3s")
	t.Setenv("FLASHCLIP_ENABLE_METRICS", "false")
	t.Setenv("FLASHCLIP_MAX_CONTENT_SIZE", "2048")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.StorageType != StorageRedis {
		t.Errorf("Expected storage type redis, got %s", cfg.StorageType)
	}
	if cfg.RedisURL != "redis://cache:6379/2" {
		t.Errorf("Expected redis url override, got %s", cfg.RedisURL)
	}
	if cfg.IDFormat != "ulid" {
		t.Errorf("Expected id format ulid, got %s", cfg.IDFormat)
	}
	if cfg.MinTTL != time.Minute {
		t.Errorf("Expected min ttl 1m, got %v", cfg.MinTTL)
	}
	if cfg.MaxTTL != 7*24*time.Hour {
		t.Errorf("Expected max ttl 7d, got %v", cfg.MaxTTL)
	}
	if cfg.StoreTimeout != 3*time.Second {
		t.Errorf("Expected store timeout 3s, got %v", cfg.StoreTimeout)
	}
	if cfg.EnableMetrics {
		t.Error("Expected metrics disabled")
	}
	if cfg.MaxContentSize != 2048 {
		t.Errorf("Expected max content size 2048, got %d", cfg.MaxContentSize)
	}
}

func TestLoadFromEnvBadDuration(t *testing.T) {
	t.Setenv("FLASHCLIP_MAX_TTL", "forever")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("Expected error for unparseable duration")
	} else if !strings.Contains(err.Error(), "FLASHCLIP_MAX_TTL") {
		t.Errorf("Expected error to name the variable, got %v", err)
	}
}

func TestLoadFromEnvBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FLASHCLIP_PORT", "abc"},
		{"FLASHCLIP_PORT", "80.5"},
		{"FLASHCLIP_MAX_CONTENT_SIZE", "5MB"},
		{"FLASHCLIP_ENABLE_WEBUI", "yes"},
		{"FLASHCLIP_ENABLE_METRICS", "off"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("Expected error for %s=%q, got config %+v", tt.key, tt.value, cfg)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Expected error to name the variable, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.Port = 0 }, wantErr: "invalid port"},
		{name: "port too high", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "invalid port"},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageType = "etcd" }, wantErr: "invalid storage type"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.StorageType = StorageS3 }, wantErr: "s3 bucket"},
		{name: "s3 with bucket", mutate: func(c *Config) { c.StorageType = StorageS3; c.S3Bucket = "clips" }},
		{name: "dynamodb without table", mutate: func(c *Config) { c.StorageType = StorageDynamoDB; c.DynamoDBTable = "" }, wantErr: "dynamodb table"},
		{name: "mongodb missing collection", mutate: func(c *Config) { c.StorageType = StorageMongoDB; c.MongoDBCollection = "" }, wantErr: "mongodb"},
		{name: "sqlite without path", mutate: func(c *Config) { c.StorageType = StorageSQLite; c.SQLitePath = "" }, wantErr: "sqlite path"},
		{name: "filesystem without dir", mutate: func(c *Config) { c.StorageType = StorageFile; c.DataDir = "" }, wantErr: "data directory"},
		{name: "bad id format", mutate: func(c *Config) { c.IDFormat = "nanoid" }, wantErr: "invalid id format"},
		{name: "zero store timeout", mutate: func(c *Config) { c.StoreTimeout = 0 }, wantErr: "store timeout"},
		{name: "negative min ttl", mutate: func(c *Config) { c.MinTTL = -time.Second }, wantErr: "negative"},
		{name: "min above max", mutate: func(c *Config) { c.MinTTL = time.Hour; c.MaxTTL = time.Minute }, wantErr: "greater than"},
		{name: "only max", mutate: func(c *Config) { c.MaxTTL = time.Hour }},
		{name: "tiny body limit", mutate: func(c *Config) { c.MaxContentSize = 10 }, wantErr: "max content size"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"90s", 90 * time.Second},
		{"1h30m", 90 * time.Minute},
		{"2d", 48 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if err != nil {
			t.Errorf("ParseDuration(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseDuration("soon"); err == nil {
		t.Error("Expected error for invalid duration")
	}
}
