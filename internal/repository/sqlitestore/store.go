package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/kailas-cloud/playmatch/internal/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_contexts (
	id                TEXT PRIMARY KEY,
	account_id        TEXT NOT NULL,
	context_hash      TEXT NOT NULL,
	song_set_hash     TEXT NOT NULL,
	playlist_set_hash TEXT NOT NULL,
	config_hash       TEXT NOT NULL,
	model_version     TEXT NOT NULL,
	weights           TEXT NOT NULL,
	song_count        INTEGER NOT NULL,
	playlist_count    INTEGER NOT NULL,
	created_at        TEXT NOT NULL,
	UNIQUE (account_id, context_hash)
);

CREATE TABLE IF NOT EXISTS match_results (
	context_id  TEXT NOT NULL REFERENCES match_contexts(id) ON DELETE CASCADE,
	song_id     TEXT NOT NULL,
	playlist_id TEXT NOT NULL,
	score       REAL NOT NULL,
	rank        INTEGER NOT NULL,
	factors     TEXT NOT NULL,
	confidence  REAL NOT NULL,
	PRIMARY KEY (context_id, song_id, playlist_id)
);
`

// Store persists match contexts and results in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and creates missing tables.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	inMemory := path == ":memory:"
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !inMemory {
		dsn += "&_pragma=journal_mode(wal)"
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if inMemory {
		// Every pooled connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: conn, now: time.Now}, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpQuery, Err: err}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close() //nolint:wrapcheck // close error is final
}

// isConstraintViolation reports UNIQUE and PRIMARY KEY violations. Foreign key
// failures are not conflicts.
func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
