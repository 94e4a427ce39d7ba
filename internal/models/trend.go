package models

// Score places m on the 1 to 5 scale used by mood trends, higher being
// better. It returns 0 for an unknown mood.
func (m Mood) Score() int {
	switch m {
	case MoodHappy:
		return 5
	case MoodNeutral:
		return 4
	case MoodAnxious:
		return 3
	case MoodSad:
		return 2
	case MoodAngry:
		return 1
	}
	return 0
}

// TrendDirection summarises how mood scores moved over a trend window.
type TrendDirection string

// Trend directions.
const (
	TrendImproving    TrendDirection = "improving"
	TrendDeclining    TrendDirection = "declining"
	TrendSteady       TrendDirection = "steady"
	TrendInsufficient TrendDirection = "insufficient_data"
)

// MoodDay is one calendar day of a mood trend. Score is the mean mood score
// of the day's entries and is nil when no entry recorded a mood.
type MoodDay struct {
	Date    string       `json:"date"`
	Weekday string       `json:"weekday"`
	Entries int          `json:"entries"`
	Counts  map[Mood]int `json:"counts"`
	Score   *float64     `json:"score"`
}

// MoodTrend is a per-day mood series ending today, oldest day first.
type MoodTrend struct {
	Days      int            `json:"days"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Series    []MoodDay      `json:"series"`
	Average   *float64       `json:"average"`
	Direction TrendDirection `json:"direction"`
}
