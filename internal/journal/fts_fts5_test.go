//go:build sqlite_fts5

package journal

import (
	"context"
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM journal_fts`).Scan(&count); err != nil {
		t.Fatalf("journal_fts table missing: %v", err)
	}
}

func TestFTS5_SnippetMarksMatch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Insert(ctx, entry("x1", "Grateful for a powerful conversation with my sister.", time.Now()))

	results, err := db.Search(ctx, "powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Snippet == "" {
		t.Fatalf("results = %+v", results)
	}
}

func TestFTS5_SummaryReplacesRow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Insert(ctx, entry("x2", "ordinary words", time.Now()))
	_ = db.AttachSummary(ctx, "x2", "resilience shows", false, time.Now())

	var rows int
	_ = db.conn.QueryRow(`SELECT count(*) FROM journal_fts WHERE id = ?`, "x2").Scan(&rows)
	if rows != 1 {
		t.Errorf("fts rows for x2 = %d, want 1", rows)
	}
	results, _ := db.Search(ctx, "resilience", 10)
	if len(results) != 1 {
		t.Errorf("summary not indexed: %+v", results)
	}
}
