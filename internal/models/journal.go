// Package models defines the domain types for Solace.
package models

import "time"

// DateLayout is the calendar-day format of JournalEntry.Date.
const DateLayout = "2006-01-02"

// JournalEntry is a saved journal note. Summary is attached once, after the
// insight call for the entry resolves.
type JournalEntry struct {
	ID              string     `json:"id"`
	Date            string     `json:"date"`
	Content         string     `json:"content"`
	Mood            Mood       `json:"mood,omitempty"`
	Summary         string     `json:"summary,omitempty"`
	SummaryFallback bool       `json:"summary_fallback"`
	CreatedAt       time.Time  `json:"created_at"`
	SummarizedAt    *time.Time `json:"summarized_at,omitempty"`
}

// Summarized reports whether a summary has been attached.
func (e *JournalEntry) Summarized() bool {
	return e.SummarizedAt != nil
}
