package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps seen posting keys for watch mode and the history of
// search runs.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS seen_postings (
	key        TEXT PRIMARY KEY,
	first_seen INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS search_runs (
	id                TEXT PRIMARY KEY,
	created_at        INTEGER NOT NULL,
	role_title        TEXT NOT NULL,
	location_mode     TEXT NOT NULL,
	location_text     TEXT NOT NULL DEFAULT '',
	industry          TEXT NOT NULL DEFAULT '',
	recency           TEXT NOT NULL DEFAULT '',
	queries_issued    INTEGER NOT NULL,
	queries_completed INTEGER NOT NULL,
	queries_failed    INTEGER NOT NULL,
	raw_candidates    INTEGER NOT NULL,
	after_filter      INTEGER NOT NULL,
	after_dedup       INTEGER NOT NULL,
	timed_out         INTEGER NOT NULL,
	duration_ms       INTEGER NOT NULL,
	results_json      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_runs_created_at ON search_runs (created_at DESC);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows one writer; the HTTP API and watch loop share this handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// HasSeen returns true if the given posting key has already been recorded.
func (s *SQLiteStore) HasSeen(key string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_postings WHERE key = ?", key).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", key, err)
	}
	return true, nil
}

// MarkSeen records a posting key as seen. If it already exists the call is a no-op.
func (s *SQLiteStore) MarkSeen(key string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO seen_postings (key, first_seen) VALUES (?, ?)", key, s.now().Unix())
	if err != nil {
		return fmt.Errorf("marking posting %s as seen: %w", key, err)
	}
	return nil
}

// Cleanup deletes seen entries older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).Unix()
	_, err := s.db.Exec("DELETE FROM seen_postings WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up seen postings older than %v: %w", olderThan, err)
	}
	return nil
}

// IsEmpty returns true if no posting has been seen yet.
func (s *SQLiteStore) IsEmpty() (bool, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM seen_postings").Scan(&count); err != nil {
		return false, fmt.Errorf("checking if store is empty: %w", err)
	}
	return count == 0, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
