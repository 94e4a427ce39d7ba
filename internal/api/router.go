package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// When the handler has an event stream, GET /events carries journal
// notifications and GET /sessions/{id}/events adds that view's updates.
func NewRouter(h *Handler, authEnabled bool, token string) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/moods", h.ListMoods)

	// Stateless insight calls.
	r.Post("/insights/summary", h.Summarize)
	r.Post("/insights/recommendation", h.Recommend)

	// Journal entries.
	r.Get("/journal", h.ListEntries)
	r.Post("/journal", h.CreateEntry)
	r.Get("/journal/search", h.Search)
	r.Get("/journal/trends", h.MoodTrends)
	r.Get("/journal/{id}", h.GetEntry)
	r.Post("/journal/{id}/summary", h.SummarizeEntry)

	// Mood and journal views.
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.DeleteSession)
		r.Put("/{id}/mood", h.SelectMood)
		r.Put("/{id}/journal", h.SetJournalText)
		r.Post("/{id}/save", h.SaveJournal)
		if h.events != nil {
			r.Get("/{id}/events", h.SessionEvents)
		}
	})

	if h.events != nil {
		r.Get("/events", h.events.ServeHTTP)
	}

	return r
}
