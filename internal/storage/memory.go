package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errClosed = errors.New("store is closed")

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired entries are invisible to
// reads and are dropped lazily or by Cleanup. The clock is injectable so
// tests can move time forward.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	closed  bool
}

// NewMemoryStore creates an empty memory store using the wall clock
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an empty memory store using now as its clock
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Put saves value under key until ttl elapses
func (m *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = memoryEntry{value: stored, expiresAt: m.now().Add(ttl)}
	return nil
}

// Get returns the live value for key
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errClosed
	}
	return m.liveLocked(key), nil
}

// Take returns the live value for key and removes it
func (m *MemoryStore) Take(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errClosed
	}
	value := m.liveLocked(key)
	delete(m.entries, key)
	return value, nil
}

// Delete removes key
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	delete(m.entries, key)
	return nil
}

// Cleanup drops every expired entry
func (m *MemoryStore) Cleanup(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errClosed
	}
	now := m.now()
	var removed int64
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of entries held, expired or not
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close marks the store closed
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// liveLocked returns a copy of the value for key, dropping it if expired.
// Callers hold m.mu.
func (m *MemoryStore) liveLocked(key string) []byte {
	entry, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value
}
