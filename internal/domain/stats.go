package domain

// StatsSummary holds the aggregate statistics for one fetched post set.
// Derived, recomputed whenever the underlying post set changes.
type StatsSummary struct {
	SampleSize        int     // mature posts (older than the maturity threshold)
	AvgPostsPerDay    float64 // cadence window only, excludes today
	AvgViews          int64   // rounded mean of mature play counts
	MedianViews       int64   // rounded median of mature play counts
	AvgEngagementRate float64 // mean over mature posts with plays > 0
	MedEngagementRate float64 // median over mature posts with plays > 0
}
