//go:build sqlite_fts5

package journal

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS journal_fts USING fts5(
			id UNINDEXED,
			content,
			summary,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, content, summary string) error {
	_, _ = tx.Exec(`DELETE FROM journal_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO journal_fts (id, content, summary) VALUES (?, ?, ?)`, id, content, summary)
	if err != nil {
		return fmt.Errorf("journal: upsert fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search over content and summaries.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	limit = clampLimit(limit)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.id,
		       e.date,
		       snippet(journal_fts, 1, '<b>', '</b>', '...', 32)
		FROM journal_fts f
		JOIN journal_entries e ON e.id = f.id
		WHERE journal_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Date, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
