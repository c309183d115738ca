package domain

// PromoJudgment is the per-post sponsorship classification, after the
// deterministic @mention override has been merged with the classifier's
// answer.
type PromoJudgment struct {
	Index      int     // position within the classified window
	PostID     string  // canonical post id, may be empty
	IsPromo    bool
	Brand      *string // nil when unknown
	Category   *string // nil when unknown
	Confidence float64 // 0..1
}
