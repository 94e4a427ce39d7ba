// Package journalservice coordinates journal storage and insight summaries.
package journalservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/solace/internal/apperr"
	"github.com/starford/solace/internal/insight"
	"github.com/starford/solace/internal/journal"
	"github.com/starford/solace/internal/models"
)

// Summarizer produces entry summaries. *insight.Service satisfies it.
type Summarizer interface {
	SummarizeResult(ctx context.Context, content string) insight.Result
}

// Notifier receives journal change events. *sse.Broker satisfies it.
type Notifier interface {
	PublishJournalEvent(kind, id string)
}

// AttachError reports a summary that was generated but could not be stored.
// Result holds the text so callers can still show it.
type AttachError struct {
	ID     string
	Result insight.Result
	Err    error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("attach summary to %s: %v", e.ID, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

type nopNotifier struct{}

func (nopNotifier) PublishJournalEvent(string, string) {}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service creates journal entries and attaches their summaries.
type Service struct {
	db      journal.Store
	insight Summarizer
	notify  Notifier
	logger  *slog.Logger
	now     func() time.Time

	// ctx scopes background summaries; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewService creates a new journal service.
func NewService(db journal.Store, ins Summarizer, opts ...Option) *Service {
	s := &Service{
		db:      db,
		insight: ins,
		notify:  nopNotifier{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Create validates and stores a new entry without a summary.
func (s *Service) Create(ctx context.Context, content string, mood models.Mood) (*models.JournalEntry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.ErrEmptyContent
	}
	if mood != "" {
		if err := mood.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidMood, mood)
		}
	}

	now := s.now()
	e := &models.JournalEntry{
		ID:        uuid.NewString(),
		Date:      now.Format(models.DateLayout),
		Content:   content,
		Mood:      mood,
		CreatedAt: now,
	}
	if err := s.db.Insert(ctx, e); err != nil {
		return nil, err
	}
	s.notify.PublishJournalEvent("created", e.ID)
	return e, nil
}

// Summarize runs the insight summary for entry id and attaches it. It
// returns apperr.ErrConflict when the entry already has a summary and an
// *AttachError when the summary was generated but not stored.
func (s *Service) Summarize(ctx context.Context, id string) (*models.JournalEntry, error) {
	e, err := s.db.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Summarized() {
		return nil, fmt.Errorf("%w: entry %s already summarized", apperr.ErrConflict, id)
	}

	res := s.insight.SummarizeResult(ctx, e.Content)
	if res.Fallback() && ctx.Err() != nil {
		// Cancelled rather than failed; leave the entry pending for a later resume.
		return nil, ctx.Err()
	}

	// A generated summary is stored even if the caller has gone away.
	at := s.now()
	if err := s.db.AttachSummary(context.WithoutCancel(ctx), id, res.Text, res.Fallback(), at); err != nil {
		return nil, &AttachError{ID: id, Result: res, Err: err}
	}
	e.Summary = res.Text
	e.SummaryFallback = res.Fallback()
	e.SummarizedAt = &at

	s.notify.PublishJournalEvent("summarized", id)
	return e, nil
}

// CreateAsync stores a new entry and summarizes it in the background. The
// returned entry has no summary yet.
func (s *Service) CreateAsync(ctx context.Context, content string, mood models.Mood) (*models.JournalEntry, error) {
	e, err := s.Create(ctx, content, mood)
	if err != nil {
		return nil, err
	}
	s.spawn(func(bg context.Context) {
		if _, err := s.Summarize(bg, e.ID); err != nil {
			s.logger.Warn("background summary failed",
				slog.String("id", e.ID),
				slog.String("error", err.Error()))
		}
	})
	return e, nil
}

// spawn runs fn in a tracked background goroutine under the service context.
// It is a no-op after Close.
func (s *Service) spawn(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// ResumePending summarizes entries left without a summary, for example after
// a restart. It returns the number of entries summarized.
func (s *Service) ResumePending(ctx context.Context) (int, error) {
	pending, err := s.db.Pending(ctx, journal.MaxLimit)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, e := range pending {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if _, err := s.Summarize(ctx, e.ID); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				continue
			}
			s.logger.Warn("resume: summary failed", slog.String("id", e.ID), slog.String("error", err.Error()))
			continue
		}
		s.logger.Debug("resume: summarized", slog.String("id", e.ID))
		done++
	}
	return done, nil
}

// Get returns a single entry.
func (s *Service) Get(ctx context.Context, id string) (*models.JournalEntry, error) {
	return s.db.Get(ctx, id)
}

// List returns entries newest first, plus the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.JournalEntry, int, error) {
	return s.db.List(ctx, limit, offset)
}

// Search delegates full-text search to the store.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]journal.SearchResult, error) {
	return s.db.Search(ctx, query, limit)
}

// Close stops accepting background work, cancels running summaries and
// waits for them to return. Cancelled entries stay pending.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
