package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/normalization"
	"influencer-stats/internal/upstream"
)

// stubPlatform serves pre-built pages in order and records calls.
type stubPlatform struct {
	pages        []*upstream.Page
	pageErr      error
	errAtPage    int
	fetchCalls   int
	resolveCalls int
	identifier   *domain.ProfileIdentifier
	resolveErr   error
}

func (s *stubPlatform) Name() domain.Platform { return domain.PlatformTikTok }

func (s *stubPlatform) ResolveIdentifier(_ context.Context, _ string) (*domain.ProfileIdentifier, error) {
	s.resolveCalls++
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.identifier, nil
}

func (s *stubPlatform) FetchPage(_ context.Context, _ *domain.ProfileIdentifier, _ string) (*upstream.Page, error) {
	s.fetchCalls++
	if s.pageErr != nil && s.fetchCalls == s.errAtPage {
		return nil, s.pageErr
	}
	if s.fetchCalls > len(s.pages) {
		return &upstream.Page{}, nil
	}
	return s.pages[s.fetchCalls-1], nil
}

func (s *stubPlatform) Chains() normalization.Chains {
	return normalization.Chains{ID: []normalization.Accessor{normalization.Field("id")}}
}

func (s *stubPlatform) PostURL(handle string, post *domain.Post) string {
	return "https://example.com/" + handle + "/" + post.ID
}

func makeRecords(prefix string, n int) []normalization.Raw {
	records := make([]normalization.Raw, n)
	for i := range records {
		records[i] = normalization.Raw{"id": fmt.Sprintf("%s-%d", prefix, i)}
	}
	return records
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func hasReason(reasons []StopReason, want StopReason) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}

func TestFetchPosts_StopsPastTarget(t *testing.T) {
	platform := &stubPlatform{pages: []*upstream.Page{
		{Records: makeRecords("a", 30), NextCursor: "c1", HasMore: true},
		{Records: makeRecords("b", 28), NextCursor: "c2", HasMore: true},
		// 58 posts so far: not past the target, one more page needed.
		{Records: makeRecords("c", 4), NextCursor: "c3", HasMore: true},
	}}

	result, err := NewFetcher(platform, testLogger()).FetchPosts(context.Background(), &domain.ProfileIdentifier{Primary: "x"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Posts) != 62 {
		t.Fatalf("Expected 62 posts, got %d", len(result.Posts))
	}
	if result.Chunks != 3 {
		t.Errorf("Expected 3 chunks, got %d", result.Chunks)
	}
	if !hasReason(result.Reasons, StopMinCount) {
		t.Errorf("Expected %s in reasons, got %v", StopMinCount, result.Reasons)
	}
	if hasReason(result.Reasons, StopLimit) || hasReason(result.Reasons, StopNoCursor) {
		t.Errorf("Unexpected extra reasons: %v", result.Reasons)
	}
}

func TestFetchPosts_ExactTargetDoesNotStop(t *testing.T) {
	platform := &stubPlatform{pages: []*upstream.Page{
		{Records: makeRecords("a", 60), NextCursor: "c1", HasMore: true},
		{Records: makeRecords("b", 5), NextCursor: "", HasMore: false},
	}}

	result, err := NewFetcher(platform, testLogger()).FetchPosts(context.Background(), &domain.ProfileIdentifier{Primary: "x"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Chunks != 2 {
		t.Fatalf("Expected a second fetch past the exact target, got %d chunks", result.Chunks)
	}
	if len(result.Posts) != 65 {
		t.Errorf("Expected 65 posts, got %d", len(result.Posts))
	}
}

func TestFetchPosts_HardLimit(t *testing.T) {
	platform := &stubPlatform{pages: []*upstream.Page{
		{Records: makeRecords("a", 150), NextCursor: "c1", HasMore: true},
	}}

	result, err := NewFetcher(platform, testLogger()).FetchPosts(context.Background(), &domain.ProfileIdentifier{Primary: "x"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !hasReason(result.Reasons, StopLimit) {
		t.Errorf("Expected %s, got %v", StopLimit, result.Reasons)
	}
	// 150 also clears the target, both reasons report.
	if !hasReason(result.Reasons, StopMinCount) {
		t.Errorf("Expected %s alongside the limit, got %v", StopMinCount, result.Reasons)
	}
	if platform.fetchCalls != 1 {
		t.Errorf("Expected 1 fetch, got %d", platform.fetchCalls)
	}
}

func TestFetchPosts_EndOfData(t *testing.T) {
	platform := &stubPlatform{pages: []*upstream.Page{
		{Records: makeRecords("a", 12), NextCursor: "", HasMore: false},
	}}

	result, err := NewFetcher(platform, testLogger()).FetchPosts(context.Background(), &domain.ProfileIdentifier{Primary: "x"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Posts) != 12 {
		t.Errorf("Expected 12 posts, got %d", len(result.Posts))
	}
	if !hasReason(result.Reasons, StopNoCursor) {
		t.Errorf("Expected %s, got %v", StopNoCursor, result.Reasons)
	}
}

func TestFetchPosts_EmptyChunkGuard(t *testing.T) {
	platform := &stubPlatform{pages: []*upstream.Page{
		{Records: makeRecords("a", 10), NextCursor: "c1", HasMore: true},
		// Upstream claims more data but returns nothing.
		{Records: nil, NextCursor: "c2", HasMore: true},
	}}

	result, err := NewFetcher(platform, testLogger()).FetchPosts(context.Background(), &domain.ProfileIdentifier{Primary: "x"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Posts) != 10 {
		t.Errorf("Expected 10 posts, got %d", len(result.Posts))
	}
	if !hasReason(result.Reasons, StopEmptyChunk) {
		t.Errorf("Expected %s, got %v", StopEmptyChunk, result.Reasons)
	}
	if platform.fetchCalls != 2 {
		t.Errorf("Expected 2 fetches, got %d", platform.fetchCalls)
	}
}

func TestFetchPosts_MidPaginationFailureDiscardsAll(t *testing.T) {
	platform := &stubPlatform{
		pages: []*upstream.Page{
			{Records: makeRecords("a", 30), NextCursor: "c1", HasMore: true},
		},
		pageErr:   errors.New("upstream HTTP 502"),
		errAtPage: 2,
	}

	result, err := NewFetcher(platform, testLogger()).FetchPosts(context.Background(), &domain.ProfileIdentifier{Primary: "x"})
	if err == nil {
		t.Fatal("Expected error")
	}
	if result != nil {
		t.Fatalf("Expected no partial result, got %d posts", len(result.Posts))
	}
}
