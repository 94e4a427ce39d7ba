package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/starford/solace/internal/apperr"
	"github.com/starford/solace/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "solace-journal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func entry(id, content string, created time.Time) *models.JournalEntry {
	return &models.JournalEntry{
		ID:        id,
		Date:      created.Format(models.DateLayout),
		Content:   content,
		CreatedAt: created,
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM journal_entries`).Scan(&count); err != nil {
		t.Fatalf("journal_entries table missing: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	e := entry("e1", "Long day at the library.", time.Now())
	e.Mood = models.MoodNeutral

	if err := db.Insert(ctx, e); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := db.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content != e.Content || got.Mood != models.MoodNeutral || got.Date != e.Date {
		t.Errorf("got %+v", got)
	}
	if got.Summarized() || got.Summary != "" {
		t.Errorf("new entry should have no summary: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.Get(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Insert(ctx, entry("dup", "a", time.Now()))
	if err := db.Insert(ctx, entry("dup", "b", time.Now())); err == nil {
		t.Fatal("duplicate id should fail")
	}
}

func TestAttachSummary_Once(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Insert(ctx, entry("s1", "Exams next week.", time.Now()))

	if err := db.AttachSummary(ctx, "s1", "You are preparing well.", false, time.Now()); err != nil {
		t.Fatalf("AttachSummary: %v", err)
	}
	got, _ := db.Get(ctx, "s1")
	if got.Summary != "You are preparing well." || !got.Summarized() || got.SummaryFallback {
		t.Errorf("got %+v", got)
	}

	err := db.AttachSummary(ctx, "s1", "again", true, time.Now())
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("second attach err = %v, want ErrConflict", err)
	}
	got, _ = db.Get(ctx, "s1")
	if got.Summary != "You are preparing well." {
		t.Errorf("summary mutated to %q", got.Summary)
	}
}

func TestAttachSummary_NotFound(t *testing.T) {
	db := testDB(t)
	err := db.AttachSummary(context.Background(), "ghost", "x", false, time.Now())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAttachSummary_FallbackFlag(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Insert(ctx, entry("f1", "hmm", time.Now()))
	_ = db.AttachSummary(ctx, "f1", "Your feelings are valid.", true, time.Now())

	got, _ := db.Get(ctx, "f1")
	if !got.SummaryFallback {
		t.Error("fallback flag not stored")
	}
}

func TestList_NewestFirst(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		_ = db.Insert(ctx, entry(id, "entry "+id, base.Add(time.Duration(i)*time.Minute)))
	}

	items, total, err := db.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(items) != 2 || items[0].ID != "c" || items[1].ID != "b" {
		t.Errorf("items = %+v", items)
	}

	items, _, _ = db.List(ctx, 2, 2)
	if len(items) != 1 || items[0].ID != "a" {
		t.Errorf("second page = %+v", items)
	}
}

func TestList_Empty(t *testing.T) {
	db := testDB(t)
	items, total, err := db.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 || total != 0 {
		t.Errorf("items = %v, total = %d", items, total)
	}
}

func TestPending(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now()
	_ = db.Insert(ctx, entry("p1", "one", now.Add(-2*time.Minute)))
	_ = db.Insert(ctx, entry("p2", "two", now.Add(-time.Minute)))
	_ = db.AttachSummary(ctx, "p1", "done", false, now)

	pending, err := db.Pending(ctx, 10)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "p2" {
		t.Errorf("pending = %+v", pending)
	}
}

func TestSearch_ContentAndSummary(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Insert(ctx, entry("q1", "Walked by the uniqueriver this morning.", time.Now()))
	_ = db.Insert(ctx, entry("q2", "Quiet evening.", time.Now()))
	_ = db.AttachSummary(ctx, "q2", "A calm moment of gratitudeword.", false, time.Now())

	results, err := db.Search(ctx, "uniqueriver", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "q1" {
		t.Errorf("content search = %+v", results)
	}

	results, err = db.Search(ctx, "gratitudeword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "q2" {
		t.Errorf("summary search = %+v", results)
	}
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{-1: DefaultLimit, 0: DefaultLimit, 7: 7, MaxLimit: MaxLimit, MaxLimit + 1: MaxLimit, 1 << 30: MaxLimit} {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSearch_CapsLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < MaxLimit+5; i++ {
		id := fmt.Sprintf("walk-%03d", i)
		if err := db.Insert(ctx, entry(id, "Evening walk by the river.", base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}

	results, err := db.Search(ctx, "walk", 1<<30)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != MaxLimit {
		t.Errorf("results = %d, want %d", len(results), MaxLimit)
	}
}

func TestMoodCounts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 5, d, 10, 0, 0, 0, time.UTC) }
	withMood := func(id string, d int, m models.Mood) *models.JournalEntry {
		e := entry(id, "note "+id, day(d))
		e.Mood = m
		return e
	}
	for _, e := range []*models.JournalEntry{
		withMood("m1", 1, models.MoodSad),
		withMood("m2", 2, models.MoodHappy),
		withMood("m3", 2, models.MoodHappy),
		withMood("m4", 2, models.MoodAnxious),
		withMood("m5", 3, ""),
		withMood("m6", 4, models.MoodNeutral),
	} {
		if err := db.Insert(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.MoodCounts(ctx, "2026-05-02")
	if err != nil {
		t.Fatalf("MoodCounts: %v", err)
	}
	want := []MoodCount{
		{Date: "2026-05-02", Mood: models.MoodAnxious, Count: 1},
		{Date: "2026-05-02", Mood: models.MoodHappy, Count: 2},
		{Date: "2026-05-04", Mood: models.MoodNeutral, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("counts = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
