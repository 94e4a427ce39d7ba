package journalservice

import (
	"context"
	"math"
	"time"

	"github.com/starford/solace/internal/journal"
	"github.com/starford/solace/internal/models"
)

// Mood trend window bounds, in days.
const (
	DefaultTrendDays = 7
	MaxTrendDays     = 90
)

// steadyBand is the largest change in mean score still reported as steady.
const steadyBand = 0.25

// MoodTrend returns the per-day mood series for the last days days,
// today included. days is clamped to [1, MaxTrendDays]; zero or less
// selects DefaultTrendDays.
func (s *Service) MoodTrend(ctx context.Context, days int) (*models.MoodTrend, error) {
	switch {
	case days <= 0:
		days = DefaultTrendDays
	case days > MaxTrendDays:
		days = MaxTrendDays
	}
	now := s.now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := to.AddDate(0, 0, -(days - 1))

	counts, err := s.db.MoodCounts(ctx, from.Format(models.DateLayout))
	if err != nil {
		return nil, err
	}
	return buildTrend(counts, from, days), nil
}

func buildTrend(counts []journal.MoodCount, from time.Time, days int) *models.MoodTrend {
	t := &models.MoodTrend{
		Days:   days,
		From:   from.Format(models.DateLayout),
		To:     from.AddDate(0, 0, days-1).Format(models.DateLayout),
		Series: make([]models.MoodDay, days),
	}
	index := make(map[string]int, days)
	for i := range t.Series {
		d := from.AddDate(0, 0, i)
		date := d.Format(models.DateLayout)
		t.Series[i] = models.MoodDay{Date: date, Weekday: d.Weekday().String()[:3], Counts: map[models.Mood]int{}}
		index[date] = i
	}

	sums := make([]int, days)
	var total, entries int
	for _, c := range counts {
		i, ok := index[c.Date]
		if !ok || c.Mood.Score() == 0 {
			continue
		}
		day := &t.Series[i]
		day.Counts[c.Mood] += c.Count
		day.Entries += c.Count
		sums[i] += c.Mood.Score() * c.Count
		total += c.Mood.Score() * c.Count
		entries += c.Count
	}

	var scored []float64
	for i := range t.Series {
		if n := t.Series[i].Entries; n > 0 {
			score := round2(float64(sums[i]) / float64(n))
			t.Series[i].Score = &score
			scored = append(scored, score)
		}
	}
	if entries > 0 {
		avg := round2(float64(total) / float64(entries))
		t.Average = &avg
	}
	t.Direction = direction(scored)
	return t
}

// direction compares the mean score of the earlier half of the scored days
// with the later half. An odd middle day belongs to neither half.
func direction(scored []float64) models.TrendDirection {
	if len(scored) < 2 {
		return models.TrendInsufficient
	}
	half := len(scored) / 2
	diff := mean(scored[len(scored)-half:]) - mean(scored[:half])
	switch {
	case diff > steadyBand:
		return models.TrendImproving
	case diff < -steadyBand:
		return models.TrendDeclining
	default:
		return models.TrendSteady
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
