package stats

import (
	"testing"
	"time"

	"influencer-stats/internal/domain"
)

func TestDailyCounts_WindowIncludesToday(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)

	posts := []domain.Post{
		{ID: "a", TakenAt: ts(time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC))},
		{ID: "b", TakenAt: ts(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))},
		{ID: "c", TakenAt: ts(time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC))},
		// First day of the window.
		{ID: "d", TakenAt: ts(time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC))},
		// Outside.
		{ID: "e", TakenAt: ts(time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC))},
		{ID: "f"},
	}

	series := DailyCounts(posts, 30, now)

	if len(series.Days) != 30 {
		t.Fatalf("Expected 30 days, got %d", len(series.Days))
	}
	first, last := series.Days[0], series.Days[len(series.Days)-1]
	if !first.Date.Equal(time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected window start %v", first.Date)
	}
	if !last.Date.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected window end %v", last.Date)
	}
	if first.Count != 1 {
		t.Errorf("Expected count 1 on window start, got %d", first.Count)
	}
	if last.Count != 2 {
		t.Errorf("Expected count 2 today, got %d", last.Count)
	}
	if series.MaxCount != 2 {
		t.Errorf("Expected max 2, got %d", series.MaxCount)
	}
}

func TestDailyCounts_EmptyWindowDaysClamped(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	series := DailyCounts(nil, 0, now)
	if len(series.Days) != 1 {
		t.Fatalf("Expected a single day, got %d", len(series.Days))
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		count, max, want int
	}{
		{0, 20, 0},
		{0, 0, 0},
		{1, 0, 2},
		{1, 1, 2},
		{5, 20, 1},  // exactly 0.25
		{6, 20, 2},  // just above 0.25
		{10, 20, 2}, // exactly 0.5
		{11, 20, 3},
		{15, 20, 3}, // exactly 0.75
		{16, 20, 4},
		{20, 20, 4},
	}

	for _, tc := range cases {
		if got := LevelFor(tc.count, tc.max); got != tc.want {
			t.Errorf("LevelFor(%d, %d): expected %d, got %d", tc.count, tc.max, tc.want, got)
		}
	}
}
