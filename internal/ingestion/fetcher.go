package ingestion

import (
	"context"
	"log"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/normalization"
	"influencer-stats/internal/observability"
	"influencer-stats/internal/upstream"
)

const (
	// PostsCountLimit is the hard safety cap on accumulated posts.
	PostsCountLimit = 150

	// StopAfterPosts is the soft target. The comparison is strictly ">":
	// reaching exactly the target does not stop, the loop always fetches
	// at least one page past it unless the cap or end-of-data intervenes.
	StopAfterPosts = 60
)

// StopReason names one fired loop-termination condition.
type StopReason string

const (
	StopNoCursor   StopReason = "no_cursor"
	StopLimit      StopReason = "limit"
	StopMinCount   StopReason = "min_count_reached"
	StopEmptyChunk StopReason = "empty_chunk"
)

// FetchResult is the accumulated post list plus loop diagnostics. Every
// true stop condition is reported, not just the first.
type FetchResult struct {
	Posts   []domain.Post
	Chunks  int
	Reasons []StopReason
}

// Fetcher runs the serial pagination loop against one platform adapter,
// normalizing each chunk as it arrives.
type Fetcher struct {
	platform   upstream.Platform
	normalizer *normalization.Normalizer
	limit      int
	target     int
	logger     *log.Logger
}

// NewFetcher creates a Fetcher with the default cap and target.
func NewFetcher(platform upstream.Platform, logger *log.Logger) *Fetcher {
	return &Fetcher{
		platform:   platform,
		normalizer: normalization.New(platform.Chains()),
		limit:      PostsCountLimit,
		target:     StopAfterPosts,
		logger:     logger,
	}
}

// FetchPosts paginates until a stop condition fires. A failure on any page
// discards everything accumulated in this call and returns the error; there
// is no partial-result recovery.
func (f *Fetcher) FetchPosts(ctx context.Context, id *domain.ProfileIdentifier) (*FetchResult, error) {
	var posts []domain.Post
	cursor := ""
	chunks := 0

	for {
		chunks++
		page, err := f.platform.FetchPage(ctx, id, cursor)
		if err != nil {
			return nil, err
		}

		chunk := f.normalizer.NormalizeAll(page.Records)
		posts = append(posts, chunk...)
		cursor = page.NextCursor
		observability.RecordPageFetched(string(f.platform.Name()), len(chunk))

		reachedEnd := page.End()
		hitLimit := len(posts) >= f.limit
		minCount := len(posts) > f.target

		if reachedEnd || hitLimit || minCount {
			var reasons []StopReason
			if reachedEnd {
				reasons = append(reasons, StopNoCursor)
			}
			if hitLimit {
				reasons = append(reasons, StopLimit)
			}
			if minCount {
				reasons = append(reasons, StopMinCount)
			}
			f.logger.Printf("fetch stop: chunks=%d total=%d reasons=%v", chunks, len(posts), reasons)
			return &FetchResult{Posts: posts, Chunks: chunks, Reasons: reasons}, nil
		}

		// A page that claims more data but yields nothing would loop
		// forever against a misbehaving upstream.
		if len(chunk) == 0 {
			f.logger.Printf("fetch stop: empty chunk %d with cursor set", chunks)
			return &FetchResult{Posts: posts, Chunks: chunks, Reasons: []StopReason{StopEmptyChunk}}, nil
		}
	}
}
