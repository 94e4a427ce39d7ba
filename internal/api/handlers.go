package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/solace/internal/insight"
	"github.com/starford/solace/internal/journalservice"
	"github.com/starford/solace/internal/models"
	"github.com/starford/solace/internal/session"
)

// Insight is the insight service consumed by the handlers.
type Insight interface {
	SummarizeResult(ctx context.Context, content string) insight.Result
	RecommendResult(ctx context.Context, mood models.Mood) insight.Result
}

// Events streams server-sent events. *sse.Broker satisfies it.
type Events interface {
	http.Handler
	Stream(w http.ResponseWriter, r *http.Request, session string)
}

// Handler holds API route handlers.
type Handler struct {
	insight  Insight
	journal  *journalservice.Service
	sessions *session.Registry
	events   Events
}

// NewHandler creates a new Handler. events may be nil, in which case the
// streaming routes are not mounted.
func NewHandler(ins Insight, js *journalservice.Service, sessions *session.Registry, events Events) *Handler {
	return &Handler{insight: ins, journal: js, sessions: sessions, events: events}
}

func toInsightResponse(res insight.Result) InsightResponse {
	return InsightResponse{Text: res.Text, Fallback: res.Fallback()}
}

// ListMoods handles GET /api/moods.
//
//	@Summary		List the selectable mood labels
//	@Tags			moods
//	@Produce		json
//	@Success		200	{object}	MoodListResponse
//	@Security		BearerAuth
//	@Router			/moods [get]
func (h *Handler) ListMoods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MoodListResponse{Moods: models.MoodLabels()})
}

// Summarize handles POST /api/insights/summary.
//
//	@Summary		Summarize journal text with a supportive insight
//	@Tags			insights
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SummaryRequest	true	"Journal text"
//	@Success		200		{object}	InsightResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/insights/summary [post]
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, toInsightResponse(h.insight.SummarizeResult(r.Context(), req.Content)))
}

// Recommend handles POST /api/insights/recommendation.
//
//	@Summary		Recommend a wellness activity for a mood
//	@Tags			insights
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoodRequest	true	"Mood label"
//	@Success		200		{object}	InsightResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/insights/recommendation [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, toInsightResponse(h.insight.RecommendResult(r.Context(), req.mood())))
}

// ListEntries handles GET /api/journal.
//
//	@Summary		List journal entries, newest first
//	@Tags			journal
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	EntryListResponse
//	@Security		BearerAuth
//	@Router			/journal [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	entries, total, err := h.journal.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, "list entries", err)
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: entries, Total: total})
}

// CreateEntry handles POST /api/journal.
//
// The entry is stored immediately and summarized in the background; the
// response carries the entry without its summary.
//
//	@Summary		Save a journal entry
//	@Tags			journal
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateEntryRequest	true	"Entry to save"
//	@Success		202		{object}	models.JournalEntry
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journal [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.journal.CreateAsync(r.Context(), req.Content, req.mood())
	if err != nil {
		writeError(w, "create entry", err)
		return
	}
	writeJSON(w, http.StatusAccepted, entry)
}

// MoodTrends handles GET /api/journal/trends.
//
//	@Summary		Per-day mood series for the trend chart
//	@Tags			journal
//	@Produce		json
//	@Param			days	query		int	false	"Window size in days (default 7, max 90)"
//	@Success		200		{object}	models.MoodTrend
//	@Security		BearerAuth
//	@Router			/journal/trends [get]
func (h *Handler) MoodTrends(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	trend, err := h.journal.MoodTrend(r.Context(), days)
	if err != nil {
		writeError(w, "mood trends", err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// GetEntry handles GET /api/journal/{id}.
//
//	@Summary		Get a journal entry
//	@Tags			journal
//	@Produce		json
//	@Param			id	path		string	true	"Entry ID"
//	@Success		200	{object}	models.JournalEntry
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journal/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// SummarizeEntry handles POST /api/journal/{id}/summary.
//
//	@Summary		Summarize a pending journal entry
//	@Tags			journal
//	@Produce		json
//	@Param			id	path		string	true	"Entry ID"
//	@Success		200	{object}	models.JournalEntry
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journal/{id}/summary [post]
func (h *Handler) SummarizeEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.journal.Summarize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "summarize entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Search handles GET /api/journal/search.
//
//	@Summary		Full-text search across journal entries
//	@Tags			journal
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journal/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.journal.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
