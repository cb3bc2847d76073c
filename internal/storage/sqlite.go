package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/johnwmail/flashclip/internal/ident"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS clips (
	id         TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_clips_expires_at ON clips(expires_at);
`

// SQLiteStore implements Store on a local SQLite file. Rows carry their
// expiry in unix milliseconds; reads ignore expired rows and Cleanup
// purges them.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Pragmas in the DSN apply to every pooled connection
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Put saves value, replacing any previous row for key
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl).UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clips (id, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("sqlite put %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Get returns the live value for key
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM clips WHERE id = ? AND expires_at > ?`,
		key, s.now().UnixMilli()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s: %w", ident.Redact(key), err)
	}
	return value, nil
}

// Take deletes a live row and returns its value in one statement
func (s *SQLiteStore) Take(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM clips WHERE id = ? AND expires_at > ? RETURNING value`,
		key, s.now().UnixMilli()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite take %s: %w", ident.Redact(key), err)
	}
	return value, nil
}

// Delete removes the row for key
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clips WHERE id = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Cleanup purges expired rows
func (s *SQLiteStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clips WHERE expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sqlite cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
