package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	fileValueName = "clip.json"
	fileMetaName  = "meta.json"
)

// fileMeta is written next to each value
type fileMeta struct {
	ExpiresAt int64 `json:"expires_at"` // unix milliseconds
}

// FileStore implements Store on a local directory, one subdirectory per
// key holding the value and its expiry. A single process is assumed to
// own the directory.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
	now      func() time.Time
}

// NewFileStore creates the base directory if needed
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{
		basePath: basePath,
		now:      time.Now,
	}, nil
}

// validFileKey rejects keys that would escape basePath
func validFileKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && !strings.ContainsRune(key, 0)
}

// Put writes the value and its metadata
func (f *FileStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !validFileKey(key) {
		return fmt.Errorf("invalid key: %q", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.basePath, key)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create clip directory: %w", err)
	}

	if err := f.writeClip(dir, value, ttl); err != nil {
		// a half-written entry must not outlive the failed Put
		_ = os.RemoveAll(dir)
		return err
	}
	return nil
}

func (f *FileStore) writeClip(dir string, value []byte, ttl time.Duration) error {
	if err := os.WriteFile(filepath.Join(dir, fileValueName), value, 0600); err != nil {
		return fmt.Errorf("failed to write value: %w", err)
	}

	meta, err := json.Marshal(fileMeta{ExpiresAt: f.now().Add(ttl).UnixMilli()})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileMetaName), meta, 0600); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// Get returns a live value. Expired entries read as absent until Cleanup.
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !validFileKey(key) {
		return nil, nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.readLive(key)
}

// Take returns a live value and removes it
func (f *FileStore) Take(ctx context.Context, key string) ([]byte, error) {
	if !validFileKey(key) {
		return nil, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	value, err := f.readLive(key)
	if err != nil || value == nil {
		return nil, err
	}
	if err := os.RemoveAll(filepath.Join(f.basePath, key)); err != nil {
		return nil, fmt.Errorf("failed to remove clip: %w", err)
	}
	return value, nil
}

// Delete removes an entry; removing a missing key is not an error
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if !validFileKey(key) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return os.RemoveAll(filepath.Join(f.basePath, key))
}

// Cleanup removes expired entries and reports how many went
func (f *FileStore) Cleanup(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read base directory: %w", err)
	}

	now := f.now()
	var cleaned int64
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return cleaned, err
		}
		if !entry.IsDir() {
			continue
		}

		meta, err := f.readMeta(entry.Name())
		if err != nil || meta == nil {
			continue
		}
		if !now.Before(time.UnixMilli(meta.ExpiresAt)) {
			if err := os.RemoveAll(filepath.Join(f.basePath, entry.Name())); err == nil {
				cleaned++
			}
		}
	}

	return cleaned, nil
}

// Close is a no-op for the filesystem
func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) readMeta(key string) (*fileMeta, error) {
	data, err := os.ReadFile(filepath.Join(f.basePath, key, fileMetaName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta fileMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &meta, nil
}

// readLive must be called with f.mu held
func (f *FileStore) readLive(key string) ([]byte, error) {
	meta, err := f.readMeta(key)
	if err != nil || meta == nil {
		return nil, err
	}
	if !f.now().Before(time.UnixMilli(meta.ExpiresAt)) {
		return nil, nil
	}

	value, err := os.ReadFile(filepath.Join(f.basePath, key, fileValueName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read value: %w", err)
	}
	return value, nil
}
