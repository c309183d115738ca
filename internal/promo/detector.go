package promo

import (
	"context"
	"sort"

	"influencer-stats/internal/domain"
)

const (
	// ClassifyWindow is how many of the most recent dated posts are judged.
	ClassifyWindow = 30

	// CaptionLimit caps caption length sent to the classifier, in runes.
	CaptionLimit = 320

	// OverrideConfidence is the confidence floor applied when a caption
	// carries an explicit @mention.
	OverrideConfidence = 0.85
)

// Detector runs classification over the recent window and merges in the
// mention override.
type Detector struct {
	classifier Classifier
}

// NewDetector creates a Detector backed by the given classifier.
func NewDetector(classifier Classifier) *Detector {
	return &Detector{classifier: classifier}
}

// Detect judges the ClassifyWindow most recent dated posts. Undated posts
// never enter the window. The mention override applies regardless of the
// model's verdict: a caption with an @mention is always a promo, branded
// with the handle's display name (the model's brand only when that name
// renders empty), category defaulting to "brand", and confidence at least
// OverrideConfidence. The override does not depend on the classifier, so
// a classifier failure still yields the override-only judgments alongside
// the error.
func (d *Detector) Detect(ctx context.Context, posts []domain.Post) ([]domain.PromoJudgment, error) {
	eligible := make([]domain.Post, 0, len(posts))
	for i := range posts {
		if posts[i].TakenAt != nil {
			eligible = append(eligible, posts[i])
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].TakenAt.Before(*eligible[j].TakenAt)
	})
	if len(eligible) > ClassifyWindow {
		eligible = eligible[len(eligible)-ClassifyWindow:]
	}
	if len(eligible) == 0 {
		return []domain.PromoJudgment{}, nil
	}

	var raw []RawJudgment
	classifyErr := ErrNoCredential
	if d.classifier != nil {
		items := make([]CaptionItem, len(eligible))
		for i := range eligible {
			items[i] = CaptionItem{Index: i, Caption: truncateRunes(eligible[i].Caption, CaptionLimit)}
		}
		raw, classifyErr = d.classifier.Classify(ctx, items)
	}

	byIndex := make(map[int]RawJudgment, len(raw))
	for _, j := range raw {
		byIndex[j.Index] = j
	}

	out := make([]domain.PromoJudgment, 0, len(eligible))
	for i := range eligible {
		ai := byIndex[i]
		j := domain.PromoJudgment{
			Index:      i,
			PostID:     eligible[i].ID,
			IsPromo:    ai.IsPromo,
			Confidence: ai.Confidence,
		}
		if ai.Brand != "" {
			brand := ai.Brand
			j.Brand = &brand
		}
		if ai.Category != "" {
			category := ai.Category
			j.Category = &category
		}

		if handle := firstHandle(eligible[i].Caption); handle != "" {
			j.IsPromo = true
			if brand := brandFromHandle(handle); brand != "" {
				j.Brand = &brand
			}
			if j.Category == nil {
				category := "brand"
				j.Category = &category
			}
			if j.Confidence < OverrideConfidence {
				j.Confidence = OverrideConfidence
			}
		}

		if j.IsPromo {
			out = append(out, j)
		}
	}
	return out, classifyErr
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
