// Package client implements the device-side synchronization layer: a local
// persistent store, an authenticated remote API client, the case aggregate
// reconciler, the dental chart editor and the session manager.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Storage keys. The case list key is the single source of truth for casos;
// per-case keys hold derived, rebuildable caches and are never authoritative.
const (
	KeyCasos   = "odontoforense:casos"
	KeyToken   = "odontoforense:token"
	KeyUsuario = "odontoforense:usuario"

	// legacyTokenKey is the old unnamespaced token key. It is only ever
	// removed, never written.
	legacyTokenKey = "token"
)

// CaseVitimasKey returns the derived victim-cache key for a caso.
func CaseVitimasKey(caseID string) string {
	return fmt.Sprintf("odontoforense:caso:%s:vitimas", caseID)
}

// CaseEvidenciasKey returns the derived evidence-cache key for a caso.
func CaseEvidenciasKey(caseID string) string {
	return fmt.Sprintf("odontoforense:caso:%s:evidencias", caseID)
}

// Store is the local persistent key-value store. Values are serialized JSON
// strings. There are no transactions and no multi-key atomicity.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Close() error
}

// SQLiteStore persists key-value pairs in a single sqlite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the store database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv(
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under key, with ok=false when the key is absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `
		SELECT value
		FROM kv
		WHERE key = ?
		LIMIT 1
	`, key).Scan(&v)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query kv %s: %w", key, err)
	}
	return v, true, nil
}

// Set upserts value under key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv(key, value)
		VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert kv %s: %w", key, err)
	}
	return nil
}

// Remove deletes the given keys. Missing keys are not an error.
func (s *SQLiteStore) Remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete kv %s: %w", key, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemStore is an in-memory Store used in tests.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

// Get returns the value stored under key, with ok=false when the key is absent.
func (m *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove deletes the given keys.
func (m *MemStore) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Close is a no-op.
func (m *MemStore) Close() error { return nil }
