// Package journal provides SQLite-backed storage for journal entries with
// optional FTS5 full-text search.
package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS journal_entries (
	id               TEXT PRIMARY KEY,
	date             TEXT NOT NULL,
	content          TEXT NOT NULL,
	mood             TEXT NOT NULL DEFAULT '',
	summary          TEXT,
	summary_fallback INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL,
	summarized_at    DATETIME
);

CREATE INDEX IF NOT EXISTS idx_journal_created ON journal_entries(created_at);
CREATE INDEX IF NOT EXISTS idx_journal_date_mood ON journal_entries(date, mood);
CREATE INDEX IF NOT EXISTS idx_journal_pending ON journal_entries(summarized_at) WHERE summarized_at IS NULL;
`

// DB wraps a sql.DB with journal-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
