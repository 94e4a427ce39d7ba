package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/solace/internal/apperr"
	"github.com/starford/solace/internal/models"
)

// List and search limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// clampLimit maps a non-positive limit to DefaultLimit and caps it at MaxLimit.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

const entryColumns = `id, date, content, mood, summary, summary_fallback, created_at, summarized_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.JournalEntry, error) {
	var (
		e            models.JournalEntry
		mood         string
		summary      sql.NullString
		summarizedAt sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.Date, &e.Content, &mood, &summary, &e.SummaryFallback, &e.CreatedAt, &summarizedAt); err != nil {
		return nil, err
	}
	e.Mood = models.Mood(mood)
	e.Summary = summary.String
	if summarizedAt.Valid {
		t := summarizedAt.Time
		e.SummarizedAt = &t
	}
	return &e, nil
}

// Insert stores a new entry and its FTS row within a transaction.
func (db *DB) Insert(ctx context.Context, e *models.JournalEntry) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journal_entries (id, date, content, mood, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.Date, e.Content, string(e.Mood), e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("journal: insert entry: %w", err)
	}

	if err := ftsUpsert(tx, e.ID, e.Content, ""); err != nil {
		return err
	}

	return tx.Commit()
}

// Get returns the entry with id, or apperr.ErrNotFound.
func (db *DB) Get(ctx context.Context, id string) (*models.JournalEntry, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("journal: get %s: %w", id, err)
	}
	return e, nil
}

// List returns entries newest first, plus the total entry count.
func (db *DB) List(ctx context.Context, limit, offset int) ([]models.JournalEntry, int, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM journal_entries`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("journal: count: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	out := []models.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

// AttachSummary sets the summary of an entry that has none yet. It returns
// apperr.ErrConflict when a summary is already attached.
func (db *DB) AttachSummary(ctx context.Context, id, summary string, fallback bool, at time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var content string
	var summarizedAt sql.NullTime
	err = tx.QueryRowContext(ctx, `SELECT content, summarized_at FROM journal_entries WHERE id = ?`, id).
		Scan(&content, &summarizedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("journal: load %s: %w", id, err)
	}
	if summarizedAt.Valid {
		return fmt.Errorf("%w: entry %s already summarized", apperr.ErrConflict, id)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE journal_entries
		SET summary = ?, summary_fallback = ?, summarized_at = ?
		WHERE id = ? AND summarized_at IS NULL
	`, summary, fallback, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("journal: attach summary: %w", err)
	}

	if err := ftsUpsert(tx, id, content, summary); err != nil {
		return err
	}

	return tx.Commit()
}

// Pending returns up to limit entries still waiting for a summary, oldest first.
func (db *DB) Pending(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = MaxLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE summarized_at IS NULL
		ORDER BY created_at, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: pending: %w", err)
	}
	defer rows.Close()

	var out []models.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// MoodCount is the number of entries recorded with Mood on Date.
type MoodCount struct {
	Date  string
	Mood  models.Mood
	Count int
}

// MoodCounts returns per-day mood tallies for entries dated on or after
// since (a models.DateLayout day), oldest day first. Entries without a mood
// are not counted.
func (db *DB) MoodCounts(ctx context.Context, since string) ([]MoodCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date, mood, count(*)
		FROM journal_entries
		WHERE mood != '' AND date >= ?
		GROUP BY date, mood
		ORDER BY date, mood
	`, since)
	if err != nil {
		return nil, fmt.Errorf("journal: mood counts: %w", err)
	}
	defer rows.Close()

	var out []MoodCount
	for rows.Next() {
		var c MoodCount
		if err := rows.Scan(&c.Date, &c.Mood, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
