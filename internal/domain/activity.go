package domain

import "time"

// DayCount is one calendar day's post count in an activity series.
type DayCount struct {
	Date  time.Time // local midnight of the bucketed day
	Count int
}

// ActivitySeries covers a fixed trailing day window ending today.
// MaxCount is the largest single-day count in the window, used for
// relative intensity scaling.
type ActivitySeries struct {
	Days     []DayCount
	MaxCount int
}
