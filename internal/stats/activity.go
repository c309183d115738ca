package stats

import (
	"time"

	"influencer-stats/internal/domain"
)

// DailyCounts buckets posts into one entry per calendar day from
// now-(windowDays-1) through today inclusive. Today IS included here,
// unlike the cadence window in Compute. Posts outside the window or
// without a timestamp are ignored.
func DailyCounts(posts []domain.Post, windowDays int, now time.Time) domain.ActivitySeries {
	if windowDays < 1 {
		windowDays = 1
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := end.AddDate(0, 0, -(windowDays - 1))

	counts := make(map[string]int)
	for i := range posts {
		t := posts[i].TakenAt
		if t == nil {
			continue
		}
		local := t.In(now.Location())
		counts[dayKey(local)]++
	}

	series := domain.ActivitySeries{
		Days: make([]domain.DayCount, 0, windowDays),
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		count := counts[dayKey(d)]
		series.Days = append(series.Days, domain.DayCount{Date: d, Count: count})
		if count > series.MaxCount {
			series.MaxCount = count
		}
	}
	return series
}

// LevelFor maps a day's count to an ordinal intensity 0..4 relative to the
// window maximum. With max <= 1 any activity reads as mid-level.
func LevelFor(count, max int) int {
	if count == 0 {
		return 0
	}
	if max <= 1 {
		return 2
	}
	ratio := float64(count) / float64(max)
	switch {
	case ratio <= 0.25:
		return 1
	case ratio <= 0.5:
		return 2
	case ratio <= 0.75:
		return 3
	default:
		return 4
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
