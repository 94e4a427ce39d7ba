package journal

import (
	"context"
	"time"

	"github.com/starford/solace/internal/models"
)

// Store is the persistence contract for journal entries.
type Store interface {
	Insert(ctx context.Context, e *models.JournalEntry) error
	Get(ctx context.Context, id string) (*models.JournalEntry, error)
	List(ctx context.Context, limit, offset int) ([]models.JournalEntry, int, error)
	AttachSummary(ctx context.Context, id, summary string, fallback bool, at time.Time) error
	Pending(ctx context.Context, limit int) ([]models.JournalEntry, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	MoodCounts(ctx context.Context, since string) ([]MoodCount, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
