package domain

import "time"

// Post is the canonical post record produced by normalization.
// Every Post originates from exactly one upstream record; normalization
// never drops or merges records.
type Post struct {
	ID           string     // may be empty if upstream omits every id alias
	Shortcode    string     // Instagram permalink code, empty elsewhere
	TakenAt      *time.Time // nil when no timestamp alias parsed
	PlayCount    int64
	LikeCount    int64
	CommentCount int64
	Caption      string  // trimmed, default empty
	ThumbnailURL *string // first valid absolute HTTP(S) URL, nil if none
}

// EngagementRate returns (likes+comments)/plays and whether the rate is
// defined. Posts with zero plays have no defined rate.
func (p *Post) EngagementRate() (float64, bool) {
	if p.PlayCount <= 0 {
		return 0, false
	}
	return float64(p.LikeCount+p.CommentCount) / float64(p.PlayCount), true
}

// Mature reports whether the post is older than the maturity threshold at
// the given instant. Posts without a timestamp are never mature.
func (p *Post) Mature(now time.Time, threshold time.Duration) bool {
	if p.TakenAt == nil {
		return false
	}
	return now.Sub(*p.TakenAt) > threshold
}
