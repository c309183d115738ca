// Package main provides the HTTP service exposing profile statistics:
// - GET /v1/stats: run the pipeline for a profile and return the results
// - GET /healthz: liveness probe
// - GET /metrics: Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/ingestion"
	"influencer-stats/internal/observability"
	"influencer-stats/internal/pipeline"
	"influencer-stats/internal/promo"
	"influencer-stats/internal/session"
	"influencer-stats/internal/stats"
	"influencer-stats/internal/storage"
	"influencer-stats/internal/storage/memory"
	"influencer-stats/internal/storage/migrations"
	pgstore "influencer-stats/internal/storage/postgres"
	"influencer-stats/internal/upstream"
)

// Server routes stats requests to the per-platform pipeline runners.
type Server struct {
	runners map[domain.Platform]*pipeline.Runner
	logger  *log.Logger
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", ":8080", "HTTP listen address")
	rapidAPIKey := flag.String("rapidapi-key", os.Getenv("RAPIDAPI_KEY"), "RapidAPI key for upstream calls")
	openAIKey := flag.String("openai-key", os.Getenv("OPENAI_API_KEY"), "OpenAI key for promo classification (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for the identifier cache")
	useMemory := flag.Bool("use-memory", false, "Use in-memory identifier cache instead of PostgreSQL")
	upstreamTimeout := flag.Duration("upstream-timeout", 30*time.Second, "Timeout for upstream HTTP calls")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rapidAPIKey == "" {
		logger.Fatal("--rapidapi-key is required (or set RAPIDAPI_KEY)")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory caching)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := createIdentifierStore(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create identifier store: %v", err)
	}
	defer cleanup()

	var classifier promo.Classifier
	if *openAIKey != "" {
		classifier = promo.NewOpenAIClient(*openAIKey)
	}

	sessions := session.NewManager()
	runners := make(map[domain.Platform]*pipeline.Runner)
	for _, platform := range []domain.Platform{domain.PlatformTikTok, domain.PlatformInstagram} {
		adapter, err := upstream.ForPlatform(platform, *rapidAPIKey, upstream.WithTimeout(*upstreamTimeout))
		if err != nil {
			logger.Fatalf("Failed to create %s adapter: %v", platform, err)
		}
		runners[platform] = pipeline.NewRunner(pipeline.Options{
			Platform:   adapter,
			Store:      store,
			Classifier: classifier,
			Sessions:   sessions,
			Logger:     logger,
		})
	}

	server := &Server{runners: runners, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stats", server.handleStats)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/metrics", observability.Handler())

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createIdentifierStore builds the durable identifier cache, either in
// memory or on PostgreSQL with migrations applied.
func createIdentifierStore(ctx context.Context, dsn string, useMemory bool) (storage.IdentifierStore, func(), error) {
	if useMemory {
		return memory.NewIdentifierStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return pgstore.NewIdentifierStore(pool), pool.Close, nil
}

// statsResponse is the wire shape of a completed run.
type statsResponse struct {
	Platform    string             `json:"platform"`
	Handle      string             `json:"handle"`
	FetchedAt   time.Time          `json:"fetched_at"`
	FromCache   bool               `json:"from_cache"`
	Chunks      int                `json:"chunks,omitempty"`
	StopReasons []string           `json:"stop_reasons,omitempty"`
	Stats       statsSummaryJSON   `json:"stats"`
	Activity    []activityDayJSON  `json:"activity"`
	ViewsSeries []viewPointJSON    `json:"views_series"`
	Posts       []postJSON         `json:"posts"`
	Promos      []promoJSON        `json:"promos"`
	PromoError  string             `json:"promo_error,omitempty"`
}

type statsSummaryJSON struct {
	SampleSize        int     `json:"sample_size"`
	AvgPostsPerDay    float64 `json:"avg_posts_per_day"`
	AvgViews          int64   `json:"avg_views"`
	MedianViews       int64   `json:"median_views"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	MedEngagementRate float64 `json:"med_engagement_rate"`
}

type activityDayJSON struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type viewPointJSON struct {
	PostID  string    `json:"post_id"`
	TakenAt time.Time `json:"taken_at"`
	Plays   int64     `json:"plays"`
}

type postJSON struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	PlayCount    int64      `json:"play_count"`
	LikeCount    int64      `json:"like_count"`
	CommentCount int64      `json:"comment_count"`
	Caption      string     `json:"caption,omitempty"`
	ThumbnailURL *string    `json:"thumbnail_url,omitempty"`
}

type promoJSON struct {
	PostID     string     `json:"post_id"`
	URL        string     `json:"url"`
	TakenAt    *time.Time `json:"taken_at,omitempty"`
	Brand      *string    `json:"brand,omitempty"`
	Category   *string    `json:"category,omitempty"`
	Confidence float64    `json:"confidence"`
	Caption    string     `json:"caption,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	platform := domain.Platform(strings.ToUpper(r.URL.Query().Get("platform")))
	handle := strings.TrimSpace(r.URL.Query().Get("handle"))
	force := r.URL.Query().Get("force") == "1" || r.URL.Query().Get("force") == "true"

	runner, ok := s.runners[platform]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown platform, expected TIKTOK or INSTAGRAM")
		return
	}
	if handle == "" {
		writeError(w, http.StatusBadRequest, "handle is required")
		return
	}

	result, err := runner.Run(r.Context(), handle, force)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRunInProgress):
			writeError(w, http.StatusConflict, "a run is already in progress for this profile")
		default:
			var resErr *ingestion.ResolutionError
			if errors.As(err, &resErr) {
				writeError(w, http.StatusBadGateway, resErr.Error())
				return
			}
			s.logger.Printf("run %s/%s failed: %v", platform, handle, err)
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, toResponse(result))
}

func toResponse(result *pipeline.Result) statsResponse {
	resp := statsResponse{
		Platform:  string(result.Platform),
		Handle:    result.Handle,
		FetchedAt: result.FetchedAt,
		FromCache: result.FromCache,
		Chunks:    result.Chunks,
		Stats: statsSummaryJSON{
			SampleSize:        result.Stats.SampleSize,
			AvgPostsPerDay:    result.Stats.AvgPostsPerDay,
			AvgViews:          result.Stats.AvgViews,
			MedianViews:       result.Stats.MedianViews,
			AvgEngagementRate: result.Stats.AvgEngagementRate,
			MedEngagementRate: result.Stats.MedEngagementRate,
		},
		PromoError: result.PromoError,
	}
	for _, reason := range result.StopReasons {
		resp.StopReasons = append(resp.StopReasons, string(reason))
	}
	for _, day := range result.Activity.Days {
		resp.Activity = append(resp.Activity, activityDayJSON{
			Date:  day.Date.Format("2006-01-02"),
			Count: day.Count,
			Level: stats.LevelFor(day.Count, result.Activity.MaxCount),
		})
	}
	for _, point := range result.ViewsSeries {
		resp.ViewsSeries = append(resp.ViewsSeries, viewPointJSON{
			PostID:  point.PostID,
			TakenAt: point.TakenAt,
			Plays:   point.Plays,
		})
	}
	for _, post := range result.Posts {
		resp.Posts = append(resp.Posts, postJSON{
			ID:           post.ID,
			URL:          post.URL,
			TakenAt:      post.TakenAt,
			PlayCount:    post.PlayCount,
			LikeCount:    post.LikeCount,
			CommentCount: post.CommentCount,
			Caption:      post.Caption,
			ThumbnailURL: post.ThumbnailURL,
		})
	}
	for _, p := range result.Promos {
		resp.Promos = append(resp.Promos, promoJSON{
			PostID:     p.PostID,
			URL:        p.URL,
			TakenAt:    p.TakenAt,
			Brand:      p.Brand,
			Category:   p.Category,
			Confidence: p.Confidence,
			Caption:    p.Caption,
		})
	}
	if resp.ViewsSeries == nil {
		resp.ViewsSeries = []viewPointJSON{}
	}
	if resp.Posts == nil {
		resp.Posts = []postJSON{}
	}
	if resp.Promos == nil {
		resp.Promos = []promoJSON{}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
