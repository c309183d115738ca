package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/normalization"
	"influencer-stats/internal/promo"
	"influencer-stats/internal/session"
	"influencer-stats/internal/storage/memory"
	"influencer-stats/internal/upstream"
)

// fakePlatform serves one fixed page of posts and counts traffic.
type fakePlatform struct {
	records      []normalization.Raw
	resolveCalls int
	fetchCalls   int
	fetchErr     error
}

func (f *fakePlatform) Name() domain.Platform { return domain.PlatformTikTok }

func (f *fakePlatform) ResolveIdentifier(_ context.Context, _ string) (*domain.ProfileIdentifier, error) {
	f.resolveCalls++
	return &domain.ProfileIdentifier{Primary: "sec-1", Secondary: "42"}, nil
}

func (f *fakePlatform) FetchPage(_ context.Context, _ *domain.ProfileIdentifier, _ string) (*upstream.Page, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &upstream.Page{Records: f.records}, nil
}

func (f *fakePlatform) Chains() normalization.Chains {
	return normalization.Chains{
		ID:        []normalization.Accessor{normalization.Field("id")},
		Timestamp: []normalization.Accessor{normalization.Field("ts")},
		Views:     []normalization.Accessor{normalization.Field("plays")},
		Likes:     []normalization.Accessor{normalization.Field("likes")},
		Comments:  []normalization.Accessor{normalization.Field("comments")},
		Caption:   []normalization.Accessor{normalization.Field("caption")},
	}
}

func (f *fakePlatform) PostURL(handle string, post *domain.Post) string {
	return "https://example.com/@" + handle + "/" + post.ID
}

// okClassifier marks the first caption a promo.
type okClassifier struct {
	calls int
	err   error
}

func (c *okClassifier) Classify(_ context.Context, items []promo.CaptionItem) ([]promo.RawJudgment, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return []promo.RawJudgment{
		{Index: items[0].Index, IsPromo: true, Brand: "Acme", Category: "fitness", Confidence: 0.9},
	}, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
}

func testRecords(now time.Time, n int) []normalization.Raw {
	records := make([]normalization.Raw, n)
	for i := range records {
		records[i] = normalization.Raw{
			"id":       fmt.Sprintf("p%d", i),
			"ts":       float64(now.AddDate(0, 0, -(i + 4)).Unix()),
			"plays":    float64(1000 * (i + 1)),
			"likes":    float64(100),
			"comments": float64(10),
			"caption":  fmt.Sprintf("post number %d", i),
		}
	}
	return records
}

func newTestRunner(platform upstream.Platform, classifier promo.Classifier) (*Runner, *session.Manager) {
	sessions := session.NewManager()
	runner := NewRunner(Options{
		Platform:   platform,
		Store:      memory.NewIdentifierStore(),
		Classifier: classifier,
		Sessions:   sessions,
		Logger:     log.New(io.Discard, "", 0),
		Now:        fixedNow,
	})
	return runner, sessions
}

func TestRun_FullPass(t *testing.T) {
	platform := &fakePlatform{records: testRecords(fixedNow(), 10)}
	classifier := &okClassifier{}
	runner, _ := newTestRunner(platform, classifier)

	result, err := runner.Run(context.Background(), "creator", false)

	require.NoError(t, err)
	assert.Equal(t, domain.PlatformTikTok, result.Platform)
	assert.Equal(t, "creator", result.Handle)
	assert.Len(t, result.Posts, 10)
	assert.Equal(t, "https://example.com/@creator/p0", result.Posts[0].URL)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, result.Chunks)

	// All posts are at least 4 days old, every one is mature.
	assert.Equal(t, 10, result.Stats.SampleSize)
	assert.Len(t, result.Activity.Days, 30)
	assert.Equal(t, 1, result.Activity.MaxCount)

	require.Len(t, result.ViewsSeries, 10)
	// Chronological: the oldest dated post leads the series.
	assert.Equal(t, "p9", result.ViewsSeries[0].PostID)
	assert.Equal(t, "p0", result.ViewsSeries[9].PostID)

	require.Len(t, result.Promos, 1)
	require.NotNil(t, result.Promos[0].Brand)
	assert.Equal(t, "Acme", *result.Promos[0].Brand)
	assert.NotEmpty(t, result.Promos[0].URL)
	assert.Empty(t, result.PromoError)
}

func TestRun_SecondRunUsesSessionCache(t *testing.T) {
	platform := &fakePlatform{records: testRecords(fixedNow(), 5)}
	runner, _ := newTestRunner(platform, &okClassifier{})

	_, err := runner.Run(context.Background(), "creator", false)
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), "creator", false)
	require.NoError(t, err)

	assert.True(t, result.FromCache)
	assert.Equal(t, 1, platform.resolveCalls)
	assert.Equal(t, 1, platform.fetchCalls)
	assert.Len(t, result.Posts, 5)
}

func TestRun_ForceRefetchesButKeepsDurableIdentifier(t *testing.T) {
	platform := &fakePlatform{records: testRecords(fixedNow(), 5)}
	runner, _ := newTestRunner(platform, &okClassifier{})

	_, err := runner.Run(context.Background(), "creator", false)
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), "creator", true)
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Equal(t, 2, platform.fetchCalls)
	// The durable store still answered, no second network resolution.
	assert.Equal(t, 1, platform.resolveCalls)
}

func TestRun_ConcurrentRunRejected(t *testing.T) {
	platform := &fakePlatform{records: testRecords(fixedNow(), 5)}
	runner, sessions := newTestRunner(platform, &okClassifier{})

	require.NoError(t, sessions.Get(domain.PlatformTikTok, "creator").TryStart())

	_, err := runner.Run(context.Background(), "creator", false)
	require.ErrorIs(t, err, session.ErrRunInProgress)
}

func TestRun_ClassifierFailureDoesNotFailRun(t *testing.T) {
	platform := &fakePlatform{records: testRecords(fixedNow(), 5)}
	runner, _ := newTestRunner(platform, &okClassifier{err: errors.New("quota exceeded")})

	result, err := runner.Run(context.Background(), "creator", false)

	require.NoError(t, err)
	assert.Contains(t, result.PromoError, "quota exceeded")
	assert.Empty(t, result.Promos)
	assert.Equal(t, 5, result.Stats.SampleSize)
}

func TestRun_NoClassifierConfigured(t *testing.T) {
	platform := &fakePlatform{records: testRecords(fixedNow(), 5)}
	runner, _ := newTestRunner(platform, nil)

	result, err := runner.Run(context.Background(), "creator", false)

	require.NoError(t, err)
	assert.Contains(t, result.PromoError, promo.ErrNoCredential.Error())
}

func TestRun_FetchFailure(t *testing.T) {
	platform := &fakePlatform{fetchErr: errors.New("upstream HTTP 502")}
	runner, sessions := newTestRunner(platform, &okClassifier{})

	_, err := runner.Run(context.Background(), "creator", false)

	require.Error(t, err)
	sess := sessions.Get(domain.PlatformTikTok, "creator")
	assert.Equal(t, session.StateFailed, sess.State())
	assert.Nil(t, sess.Posts())

	// A failed session can run again.
	platform.fetchErr = nil
	platform.records = testRecords(fixedNow(), 3)
	result, err := runner.Run(context.Background(), "creator", false)
	require.NoError(t, err)
	assert.Len(t, result.Posts, 3)
}

func TestRun_PromosSortedNewestFirst(t *testing.T) {
	now := fixedNow()
	platform := &fakePlatform{records: []normalization.Raw{
		{"id": "old", "ts": float64(now.AddDate(0, 0, -20).Unix()), "caption": "with @brand_one"},
		{"id": "new", "ts": float64(now.AddDate(0, 0, -5).Unix()), "caption": "with @brand_two"},
	}}
	// Classifier yields nothing; mention override drives both judgments.
	runner, _ := newTestRunner(platform, &okClassifier{err: nil})

	result, err := runner.Run(context.Background(), "creator", false)

	require.NoError(t, err)
	require.Len(t, result.Promos, 2)
	assert.Equal(t, "new", result.Promos[0].PostID)
	assert.Equal(t, "old", result.Promos[1].PostID)
}
