package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/solace/internal/session"
)

func (h *Handler) view(w http.ResponseWriter, r *http.Request) (*session.View, bool) {
	v, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get session", err)
		return nil, false
	}
	return v, true
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Open a mood and journal view
//	@Tags			sessions
//	@Produce		json
//	@Success		201	{object}	session.Snapshot
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, h.sessions.Create().Snapshot())
}

// GetSession handles GET /api/sessions/{id}.
//
//	@Summary		Get the current view state
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	session.Snapshot
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.Snapshot())
}

// DeleteSession handles DELETE /api/sessions/{id}.
//
//	@Summary		Close a view
//	@Tags			sessions
//	@Param			id	path	string	true	"Session ID"
//	@Success		204	"Session closed"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id} [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectMood handles PUT /api/sessions/{id}/mood.
//
// The recommendation for the mood is requested in the background and
// delivered through the session.updated event.
//
//	@Summary		Select a mood
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Session ID"
//	@Param			body	body		MoodRequest	true	"Mood label"
//	@Success		202		{object}	session.Snapshot
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/mood [put]
func (h *Handler) SelectMood(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	var req MoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := v.SelectMood(req.mood())
	if err != nil {
		writeError(w, "select mood", err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

// SetJournalText handles PUT /api/sessions/{id}/journal.
//
//	@Summary		Replace the journal text
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session ID"
//	@Param			body	body		JournalTextRequest	true	"Journal text"
//	@Success		200		{object}	session.Snapshot
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/journal [put]
func (h *Handler) SetJournalText(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	var req JournalTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := v.SetJournalText(req.Text)
	if err != nil {
		writeError(w, "set journal text", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SaveJournal handles POST /api/sessions/{id}/save.
//
//	@Summary		Save the journal text and summarize it
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		202	{object}	session.Snapshot
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/save [post]
func (h *Handler) SaveJournal(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	snap, err := v.Save()
	if err != nil {
		writeError(w, "save journal", err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

// SessionEvents handles GET /api/sessions/{id}/events.
//
// The stream carries this view's session.updated events plus the journal
// notifications every subscriber receives.
//
//	@Summary		Stream a view's updates
//	@Tags			sessions
//	@Produce		text/event-stream
//	@Param			id	path	string	true	"Session ID"
//	@Success		200	"Event stream"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/events [get]
func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	h.events.Stream(w, r, v.ID())
}
