package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lotas/readless/internal/types"
)

// KV is a single-key-per-row string store backed by SQLite.
// Each Set replaces the previous value wholesale.
type KV struct {
	db *sql.DB
}

// NewKV wraps an open database. The kv table must exist (see OpenDB).
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Get returns the value for key. The bool is false when the key was never set.
func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *KV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Note returns the value for key with its last write time.
// A missing key yields a zero-valued Note with Key set.
func (s *KV) Note(ctx context.Context, key string) (types.Note, error) {
	n := types.Note{Key: key}
	err := s.db.QueryRowContext(ctx, "SELECT value, updated_at FROM kv WHERE key = ?", key).
		Scan(&n.Text, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("get %s: %w", key, err)
	}
	return n, nil
}

// MemStore is an in-memory store for tests and ephemeral sessions.
type MemStore struct {
	mu      sync.Mutex
	values  map[string]string
	updated map[string]time.Time
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string), updated: make(map[string]time.Time)}
}

func (s *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.updated[key] = time.Now().UTC()
	return nil
}

func (s *MemStore) Note(_ context.Context, key string) (types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.Note{Key: key, Text: s.values[key], UpdatedAt: s.updated[key]}, nil
}
