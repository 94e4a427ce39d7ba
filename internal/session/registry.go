package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/starford/solace/internal/apperr"
)

// Option configures a Registry.
type Option func(*Registry)

// WithNotifier sets the function called with every view state change.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) { r.notify = n }
}

// WithLogger sets the logger handed to new views.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// Registry keeps the live views by ID. A view that is not accessed for the
// idle TTL is evicted and closed on the next sweep.
type Registry struct {
	cache   *cache.Cache
	insight Insight
	journal Journal
	notify  Notifier
	logger  *slog.Logger
}

// NewRegistry creates a Registry. A zero idleTTL keeps views until they are
// deleted explicitly.
func NewRegistry(idleTTL time.Duration, ins Insight, j Journal, opts ...Option) *Registry {
	if idleTTL <= 0 {
		idleTTL = cache.NoExpiration
	}
	// No janitor: expired views are removed by Sweep so their shutdown
	// stays under the caller's lifecycle.
	r := &Registry{
		cache:   cache.New(idleTTL, 0),
		insight: ins,
		journal: j,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache.OnEvicted(func(id string, x interface{}) {
		if v, ok := x.(*View); ok {
			v.Close()
			r.logger.Debug("session closed", slog.String("session", id))
		}
	})
	return r
}

// Create starts a new view.
func (r *Registry) Create() *View {
	id := uuid.NewString()
	v := newView(id, r.insight, r.journal, r.notify, r.logger)
	r.cache.Set(id, v, cache.DefaultExpiration)
	return v
}

// Get returns the view with the given ID and restarts its idle timer. A
// view deleted concurrently is reported as not found, never re-inserted.
func (r *Registry) Get(id string) (*View, error) {
	x, ok := r.cache.Get(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if err := r.cache.Replace(id, x, cache.DefaultExpiration); err != nil {
		return nil, apperr.ErrNotFound
	}
	return x.(*View), nil
}

// Delete closes and removes the view with the given ID.
func (r *Registry) Delete(id string) error {
	if _, ok := r.cache.Get(id); !ok {
		return apperr.ErrNotFound
	}
	r.cache.Delete(id)
	return nil
}

// Len returns the number of views held, including expired ones not yet swept.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Sweep closes and removes every expired view.
func (r *Registry) Sweep() {
	r.cache.DeleteExpired()
}

// Run sweeps expired views every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close closes and removes every view.
func (r *Registry) Close() {
	r.cache.DeleteExpired()
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
