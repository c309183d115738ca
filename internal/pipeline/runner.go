// Package pipeline orchestrates one profile run: resolve, fetch, compute
// statistics, bucket activity, classify promotions. The run is generic over
// the platform adapter; nothing here knows which network it talks to.
package pipeline

import (
	"context"
	"log"
	"sort"
	"time"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/ingestion"
	"influencer-stats/internal/observability"
	"influencer-stats/internal/promo"
	"influencer-stats/internal/session"
	"influencer-stats/internal/stats"
	"influencer-stats/internal/storage"
	"influencer-stats/internal/upstream"
)

// PostView is one post plus its public permalink.
type PostView struct {
	domain.Post
	URL string
}

// PromoView is one promo judgment joined back to its post.
type PromoView struct {
	domain.PromoJudgment
	URL     string
	TakenAt *time.Time
	Caption string
}

// ViewPoint is one sample in the recent-views series: the play count of
// one dated post, oldest first.
type ViewPoint struct {
	PostID  string
	TakenAt time.Time
	Plays   int64
}

// Result is the complete output of one run.
type Result struct {
	Platform    domain.Platform
	Handle      string
	Posts       []PostView
	Stats       domain.StatsSummary
	Activity    domain.ActivitySeries
	ViewsSeries []ViewPoint
	Promos      []PromoView
	PromoError  string
	Chunks      int
	StopReasons []ingestion.StopReason
	FetchedAt   time.Time
	FromCache   bool
}

// Options wires a Runner.
type Options struct {
	Platform   upstream.Platform
	Store      storage.IdentifierStore
	Classifier promo.Classifier
	Sessions   *session.Manager
	Logger     *log.Logger

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

// Runner executes profile runs for one platform.
type Runner struct {
	platform upstream.Platform
	resolver *ingestion.Resolver
	fetcher  *ingestion.Fetcher
	detector *promo.Detector
	sessions *session.Manager
	logger   *log.Logger
	now      func() time.Time
}

// NewRunner creates a Runner from Options. Platform, Sessions and Logger
// are required; Store and Classifier may be nil, degrading the identifier
// cache and promo detection respectively.
func NewRunner(opts Options) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		platform: opts.Platform,
		resolver: ingestion.NewResolver(opts.Platform, opts.Store, opts.Logger),
		fetcher:  ingestion.NewFetcher(opts.Platform, opts.Logger),
		detector: promo.NewDetector(opts.Classifier),
		sessions: opts.Sessions,
		logger:   opts.Logger,
		now:      now,
	}
}

// Run executes one run for handle. Concurrent runs for the same handle are
// rejected with session.ErrRunInProgress. With force set the session state
// is discarded first; the durable identifier cache survives a force.
// Classification failure does not fail the run, it surfaces in PromoError
// with statistics intact.
func (r *Runner) Run(ctx context.Context, handle string, force bool) (*Result, error) {
	sess := r.sessions.Get(r.platform.Name(), handle)
	if err := sess.TryStart(); err != nil {
		return nil, err
	}

	start := r.now()
	res, err := r.run(ctx, sess, handle, force)
	sess.Finish(err)

	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.RecordPipelineRun(string(r.platform.Name()), status, r.now().Sub(start).Seconds())
	return res, err
}

func (r *Runner) run(ctx context.Context, sess *session.Session, handle string, force bool) (*Result, error) {
	if force {
		sess.Invalidate()
	}

	now := r.now()
	result := &Result{
		Platform: r.platform.Name(),
		Handle:   handle,
	}

	var posts []domain.Post
	if cached := sess.Posts(); !force && len(cached) > 0 && sess.Stats() != nil {
		posts = cached
		result.Stats = *sess.Stats()
		result.FetchedAt = sess.LastFetchedAt()
		result.FromCache = true
		r.logger.Printf("run %s/%s: reusing %d cached posts", r.platform.Name(), handle, len(posts))
	} else {
		id, err := r.resolver.Resolve(ctx, sess, handle)
		if err != nil {
			return nil, err
		}

		fetched, err := r.fetcher.FetchPosts(ctx, id)
		if err != nil {
			return nil, err
		}
		posts = fetched.Posts
		result.Chunks = fetched.Chunks
		result.StopReasons = fetched.Reasons
		result.Stats = stats.Compute(posts, now)
		result.FetchedAt = now

		summary := result.Stats
		sess.SetResults(posts, &summary, now)
		r.logger.Printf("run %s/%s: fetched %d posts in %d chunks", r.platform.Name(), handle, len(posts), fetched.Chunks)
	}

	result.Posts = make([]PostView, len(posts))
	for i := range posts {
		result.Posts[i] = PostView{Post: posts[i], URL: r.platform.PostURL(handle, &posts[i])}
	}
	result.Activity = stats.DailyCounts(posts, stats.DaysWindow, now)
	result.ViewsSeries = viewsSeries(posts)

	// The mention override inside Detect is deterministic, so a classifier
	// failure still yields partial judgments worth showing.
	judgments, err := r.detector.Detect(ctx, posts)
	if err != nil {
		result.PromoError = err.Error()
		r.logger.Printf("run %s/%s: promo classification degraded: %v", r.platform.Name(), handle, err)
	}
	result.Promos = r.joinPromos(handle, posts, judgments)
	return result, nil
}

// viewsSeriesSize caps the sparkline sample at the most recent dated posts.
const viewsSeriesSize = 30

// viewsSeries returns the play counts of the most recent dated posts in
// chronological order.
func viewsSeries(posts []domain.Post) []ViewPoint {
	dated := make([]domain.Post, 0, len(posts))
	for i := range posts {
		if posts[i].TakenAt != nil {
			dated = append(dated, posts[i])
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].TakenAt.Before(*dated[j].TakenAt)
	})
	if len(dated) > viewsSeriesSize {
		dated = dated[len(dated)-viewsSeriesSize:]
	}

	series := make([]ViewPoint, len(dated))
	for i := range dated {
		series[i] = ViewPoint{PostID: dated[i].ID, TakenAt: *dated[i].TakenAt, Plays: dated[i].PlayCount}
	}
	return series
}

// joinPromos attaches permalink and timestamp to each judgment and orders
// newest first.
func (r *Runner) joinPromos(handle string, posts []domain.Post, judgments []domain.PromoJudgment) []PromoView {
	byID := make(map[string]*domain.Post, len(posts))
	for i := range posts {
		byID[posts[i].ID] = &posts[i]
	}

	views := make([]PromoView, 0, len(judgments))
	for _, j := range judgments {
		v := PromoView{PromoJudgment: j}
		if p, ok := byID[j.PostID]; ok {
			v.URL = r.platform.PostURL(handle, p)
			v.TakenAt = p.TakenAt
			v.Caption = p.Caption
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool {
		ti, tj := views[i].TakenAt, views[j].TakenAt
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})
	return views
}
