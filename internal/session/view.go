// Package session holds the server-side state of the mood and journal view:
// the selected mood, the journal textarea, the in-flight summary flag and
// the last texts returned by the insight service.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/solace/internal/apperr"
	"github.com/starford/solace/internal/insight"
	"github.com/starford/solace/internal/journalservice"
	"github.com/starford/solace/internal/models"
)

// ErrClosed is returned by operations on a closed view.
var ErrClosed = errors.New("session: view closed")

// Insight is the part of the insight service a view consumes.
type Insight interface {
	SummarizeResult(ctx context.Context, content string) insight.Result
	RecommendResult(ctx context.Context, mood models.Mood) insight.Result
}

// Journal persists saved entries and attaches their summaries.
type Journal interface {
	Create(ctx context.Context, content string, mood models.Mood) (*models.JournalEntry, error)
	Summarize(ctx context.Context, id string) (*models.JournalEntry, error)
}

// Notifier is called with a fresh snapshot after every state change.
type Notifier func(Snapshot)

// Snapshot is a copy of a view's state.
type Snapshot struct {
	ID                     string      `json:"id"`
	SelectedMood           models.Mood `json:"selected_mood,omitempty"`
	JournalText            string      `json:"journal_text"`
	Summarizing            bool        `json:"summarizing"`
	Summary                string      `json:"summary,omitempty"`
	SummaryFallback        bool        `json:"summary_fallback"`
	LastEntryID            string      `json:"last_entry_id,omitempty"`
	Recommendation         string      `json:"recommendation,omitempty"`
	RecommendationMood     models.Mood `json:"recommendation_mood,omitempty"`
	RecommendationFallback bool        `json:"recommendation_fallback"`
	RecommendationPending  bool        `json:"recommendation_pending"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// View is one client's mood and journal view. It is safe for concurrent use.
//
// Every SelectMood call takes a new sequence number. A recommendation is
// applied only while its number is the latest issued, so the displayed text
// always belongs to the most recently issued request even when responses
// complete out of order.
type View struct {
	id      string
	insight Insight
	journal Journal
	notify  Notifier
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	state     Snapshot
	recSeq    uint64
	recCancel context.CancelFunc
	closed    bool
}

func newView(id string, ins Insight, j Journal, notify Notifier, logger *slog.Logger) *View {
	ctx, cancel := context.WithCancel(context.Background())
	if notify == nil {
		notify = func(Snapshot) {}
	}
	return &View{
		id:      id,
		insight: ins,
		journal: j,
		notify:  notify,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		state:   Snapshot{ID: id, UpdatedAt: time.Now()},
	}
}

// ID returns the view identifier.
func (v *View) ID() string {
	return v.id
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// SelectMood records the selected mood and requests a recommendation for it
// in the background. A still-running request for an earlier selection is
// cancelled and its response discarded.
func (v *View) SelectMood(mood models.Mood) (Snapshot, error) {
	if err := mood.Validate(); err != nil {
		return Snapshot{}, apperr.ErrInvalidMood
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	v.recSeq++
	seq := v.recSeq
	if v.recCancel != nil {
		v.recCancel()
	}
	ctx, cancel := context.WithCancel(v.ctx)
	v.recCancel = cancel

	v.state.SelectedMood = mood
	v.state.RecommendationPending = true
	v.touch()
	snap := v.state
	v.wg.Add(1)
	v.mu.Unlock()

	go func() {
		defer v.wg.Done()
		defer cancel()
		res := v.insight.RecommendResult(ctx, mood)
		v.applyRecommendation(seq, mood, res)
	}()

	v.notify(snap)
	return snap, nil
}

func (v *View) applyRecommendation(seq uint64, mood models.Mood, res insight.Result) {
	v.mu.Lock()
	if v.closed || seq != v.recSeq {
		v.mu.Unlock()
		v.logger.Debug("discarding stale recommendation",
			slog.String("session", v.id),
			slog.String("mood", string(mood)))
		return
	}
	v.recCancel = nil
	v.state.Recommendation = res.Text
	v.state.RecommendationMood = mood
	v.state.RecommendationFallback = res.Fallback()
	v.state.RecommendationPending = false
	v.touch()
	snap := v.state
	v.mu.Unlock()

	v.notify(snap)
}

// SetJournalText replaces the journal textarea contents.
func (v *View) SetJournalText(text string) (Snapshot, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	v.state.JournalText = text
	v.touch()
	snap := v.state
	v.mu.Unlock()

	v.notify(snap)
	return snap, nil
}

// Save stores the journal text as an entry and summarizes it in the
// background. It fails with apperr.ErrEmptyContent for blank text and
// apperr.ErrSummaryInFlight while a previous save is still summarizing.
func (v *View) Save() (Snapshot, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	text := v.state.JournalText
	if strings.TrimSpace(text) == "" {
		v.mu.Unlock()
		return Snapshot{}, apperr.ErrEmptyContent
	}
	if v.state.Summarizing {
		v.mu.Unlock()
		return Snapshot{}, apperr.ErrSummaryInFlight
	}
	v.state.Summarizing = true
	v.touch()
	mood := v.state.SelectedMood
	snap := v.state
	v.wg.Add(1)
	v.mu.Unlock()

	go func() {
		defer v.wg.Done()
		v.summarize(text, mood)
	}()

	v.notify(snap)
	return snap, nil
}

func (v *View) summarize(text string, mood models.Mood) {
	entry, err := v.journal.Create(v.ctx, text, mood)
	if err == nil {
		entry, err = v.journal.Summarize(v.ctx, entry.ID)
	}
	if err == nil {
		v.finishSave(entry.Summary, entry.SummaryFallback, entry.ID)
		return
	}
	if v.ctx.Err() != nil {
		v.finishSave("", false, "")
		return
	}

	// Stored but the summary was not attached; show the generated text.
	var ae *journalservice.AttachError
	if errors.As(err, &ae) {
		v.logger.Warn("summary not stored",
			slog.String("session", v.id),
			slog.String("id", ae.ID),
			slog.String("error", ae.Err.Error()))
		v.finishSave(ae.Result.Text, ae.Result.Fallback(), ae.ID)
		return
	}

	// The entry could not be stored; still show a summary for the text.
	v.logger.Warn("journal save failed, summarizing without storing",
		slog.String("session", v.id),
		slog.String("error", err.Error()))
	res := v.insight.SummarizeResult(v.ctx, text)
	v.finishSave(res.Text, res.Fallback(), "")
}

func (v *View) finishSave(summary string, fallback bool, entryID string) {
	v.mu.Lock()
	v.state.Summarizing = false
	if v.closed || summary == "" {
		v.mu.Unlock()
		return
	}
	v.state.Summary = summary
	v.state.SummaryFallback = fallback
	v.state.LastEntryID = entryID
	v.touch()
	snap := v.state
	v.mu.Unlock()

	v.notify(snap)
}

// Wait blocks until every background request issued so far has finished.
func (v *View) Wait() {
	v.wg.Wait()
}

// Close cancels outstanding requests and waits for them to return.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.cancel()
	v.mu.Unlock()

	v.wg.Wait()
}

// touch must be called with mu held.
func (v *View) touch() {
	v.state.UpdatedAt = time.Now()
}
