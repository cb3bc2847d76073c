package storage

import (
	"context"
	"time"
)

// Store is a key-value store with per-key expiration. Values are opaque
// bytes; the store owns durability and drops a key once its ttl elapses.
type Store interface {
	// Put saves value under key and expires it after ttl
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value for key, or (nil, nil) when the key is absent or expired
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend connection
	Close() error
}

// Taker is implemented by stores that can read and remove a key in one
// atomic step. Of several concurrent Take calls for the same key, at most
// one receives the value; the others get (nil, nil).
type Taker interface {
	Take(ctx context.Context, key string) ([]byte, error)
}

// Cleaner is implemented by stores whose expired entries linger until
// removed explicitly. Cleanup returns the number of entries removed.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}
