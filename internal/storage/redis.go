package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnwmail/flashclip/internal/ident"
)

// RedisStore implements Store on Redis. Expiration is native (SET ... EX)
// and Take uses GETDEL, so one-time reads are atomic.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at url and verifies the connection
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Put saves value with a native expiry
func (r *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Get returns the value for key
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", ident.Redact(key), err)
	}
	return value, nil
}

// Take returns the value for key and deletes it in one command
func (r *RedisStore) Take(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.GetDel(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel %s: %w", ident.Redact(key), err)
	}
	return value, nil
}

// Delete removes key
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Close closes the Redis client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
