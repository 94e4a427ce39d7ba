package models

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/solace/internal/apperr"
)

// Mood is one of the closed set of emotional-state labels a user can select.
type Mood string

// Mood labels.
const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
	MoodAnxious Mood = "anxious"
	MoodAngry   Mood = "angry"
)

// Moods lists every label in display order.
var Moods = []Mood{MoodHappy, MoodNeutral, MoodSad, MoodAnxious, MoodAngry}

// MoodLabel pairs a mood with its human-readable name.
type MoodLabel struct {
	Value Mood   `json:"value"`
	Label string `json:"label"`
}

// MoodLabels returns the labels shown in the mood selector.
func MoodLabels() []MoodLabel {
	out := make([]MoodLabel, len(Moods))
	for i, m := range Moods {
		out[i] = MoodLabel{Value: m, Label: strings.ToUpper(string(m[:1])) + string(m[1:])}
	}
	return out
}

// Validate reports whether m is one of the defined labels.
func (m Mood) Validate() error {
	return validation.Validate(string(m),
		validation.Required,
		validation.In(moodValues()...),
	)
}

// ParseMood normalises s and returns the matching Mood.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("%w: %q", apperr.ErrInvalidMood, s)
	}
	return m, nil
}

func moodValues() []interface{} {
	out := make([]interface{}, len(Moods))
	for i, m := range Moods {
		out[i] = string(m)
	}
	return out
}
