// Package learn persists (input, chosen result) associations and serves
// them back as ranking boosts. Learning is advisory: lookups and writes
// may race, last writer wins, and rows are never deleted. Growth is
// bounded only by how much the user launches things.
package learn

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// Store records which result the user chose for a given input string.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

const schema = `
CREATE TABLE IF NOT EXISTS associations (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	item_id    TEXT NOT NULL,
	uses       INTEGER NOT NULL DEFAULT 1,
	last_used  TIMESTAMP NOT NULL,
	UNIQUE(input, item_id)
);
CREATE INDEX IF NOT EXISTS idx_associations_input ON associations(input);
`

// Open opens or creates the learning database. An empty path opens an
// in-memory database for testing.
func Open(path string) (*Store, error) {
	var dsn string
	if path == "" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
		}
		// WAL keeps the keystroke-path reader from blocking behind the
		// selection-path writer.
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open learn database: %w", err)
	}

	// Single connection prevents SQLite lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Learn records that itemID was chosen for input. Repeat selections
// increment the use count, strengthening the boost.
func (s *Store) Learn(ctx context.Context, input, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("learn store is closed")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO associations (id, input, item_id, uses, last_used)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(input, item_id)
		DO UPDATE SET uses = uses + 1, last_used = excluded.last_used`,
		uuid.NewString(), input, itemID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record association: %w", err)
	}
	return nil
}

// Lookup returns item_id -> use count for the literal input string.
// Exact match only; no fuzzy or partial learned matching.
func (s *Store) Lookup(ctx context.Context, input string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("learn store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, uses FROM associations WHERE input = ?`, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query associations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	boosts := make(map[string]int)
	for rows.Next() {
		var itemID string
		var uses int
		if err := rows.Scan(&itemID, &uses); err != nil {
			return nil, fmt.Errorf("failed to scan association: %w", err)
		}
		boosts[itemID] = uses
	}
	return boosts, rows.Err()
}

// Count returns the total number of stored associations.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("learn store is closed")
	}

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM associations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count associations: %w", err)
	}
	return n, nil
}

// Close closes the database. Safe to call multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
