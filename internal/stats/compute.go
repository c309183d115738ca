// Package stats computes the aggregate statistics for a fetched post set.
// Two separate time windows are in play and must not be conflated: the
// cadence window (trailing full days, today excluded) and the engagement
// window (posts older than the maturity threshold).
package stats

import (
	"math"
	"sort"
	"time"

	"influencer-stats/internal/domain"
)

const (
	// DaysWindow is the trailing day range for cadence and activity.
	DaysWindow = 30

	// MaturityThreshold is the minimum post age before a post enters the
	// view and engagement samples. Fresh posts are still accumulating
	// plays and would drag the averages down.
	MaturityThreshold = 3 * 24 * time.Hour
)

// Compute derives the summary statistics for posts at the given instant.
// Pure function of its inputs; empty input yields an all-zero summary.
func Compute(posts []domain.Post, now time.Time) domain.StatsSummary {
	// Cadence: the (DaysWindow-1) full calendar days strictly before today.
	// A post published right now contributes nothing here.
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	daysForAvg := DaysWindow - 1
	if daysForAvg < 1 {
		daysForAvg = 1
	}
	windowStart := todayStart.AddDate(0, 0, -daysForAvg)

	inCadenceWindow := 0
	for i := range posts {
		t := posts[i].TakenAt
		if t == nil {
			continue
		}
		if !t.Before(windowStart) && t.Before(todayStart) {
			inCadenceWindow++
		}
	}

	// Engagement: posts older than the maturity threshold. Zero-view posts
	// stay in the view sample but are excluded from the rate sample.
	var views []float64
	var rates []float64
	for i := range posts {
		p := &posts[i]
		if !p.Mature(now, MaturityThreshold) {
			continue
		}
		views = append(views, float64(p.PlayCount))
		if rate, ok := p.EngagementRate(); ok {
			rates = append(rates, rate)
		}
	}

	return domain.StatsSummary{
		SampleSize:        len(views),
		AvgPostsPerDay:    float64(inCadenceWindow) / float64(daysForAvg),
		AvgViews:          int64(math.Round(mean(views))),
		MedianViews:       int64(math.Round(median(views))),
		AvgEngagementRate: mean(rates),
		MedEngagementRate: median(rates),
	}
}

// mean calculates the arithmetic mean. Empty input yields 0.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median is the standard order statistic: middle element for odd length,
// mean of the two central elements for even length. Empty input yields 0.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
