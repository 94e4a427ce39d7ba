package api

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/solace/internal/journal"
	"github.com/starford/solace/internal/models"
)

var errBlank = errors.New("cannot be blank")

func notBlank(v interface{}) error {
	if s, _ := v.(string); strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
}

func validMood(v interface{}) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := models.ParseMood(s); err != nil {
		return errors.New("must be one of happy, neutral, sad, anxious, angry")
	}
	return nil
}

// SummaryRequest is the request body for a journal summary.
type SummaryRequest struct {
	Content string `json:"content" example:"I feel overwhelmed by exams" validate:"required"`
}

// Validate validates the request.
func (r *SummaryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.By(notBlank)),
	)
}

// MoodRequest carries a mood label.
type MoodRequest struct {
	Mood string `json:"mood" example:"anxious" validate:"required"`
}

// Validate validates the request.
func (r *MoodRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Mood, validation.Required, validation.By(validMood)),
	)
}

func (r *MoodRequest) mood() models.Mood {
	m, _ := models.ParseMood(r.Mood)
	return m
}

// CreateEntryRequest is the request body for saving a journal entry.
type CreateEntryRequest struct {
	Content string `json:"content" example:"Long day, but I finished the project." validate:"required"`
	Mood    string `json:"mood,omitempty" example:"happy"`
}

// Validate validates the request.
func (r *CreateEntryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.By(notBlank)),
		validation.Field(&r.Mood, validation.By(validMood)),
	)
}

func (r *CreateEntryRequest) mood() models.Mood {
	if r.Mood == "" {
		return ""
	}
	m, _ := models.ParseMood(r.Mood)
	return m
}

// JournalTextRequest replaces a session's journal text. Empty text is allowed.
type JournalTextRequest struct {
	Text string `json:"text" example:"Today I..."`
}

// Validate validates the request.
func (r *JournalTextRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.RuneLength(0, maxBodyBytes)),
	)
}

// InsightResponse is returned by the insight endpoints.
type InsightResponse struct {
	Text     string `json:"text" example:"Try a 5-minute deep breathing exercise." validate:"required"`
	Fallback bool   `json:"fallback" example:"false"`
}

// MoodListResponse wraps the mood labels.
type MoodListResponse struct {
	Moods []models.MoodLabel `json:"moods" validate:"required"`
}

// EntryListResponse wraps paginated journal listings.
type EntryListResponse struct {
	Entries []models.JournalEntry `json:"entries" validate:"required"`
	Total   int                   `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []journal.SearchResult `json:"results" validate:"required"`
}
