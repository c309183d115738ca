// Package main provides the one-shot pipeline entry point.
// Executes: resolve → fetch → statistics → activity → promo detection
// for a single profile and prints the summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"influencer-stats/internal/domain"
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

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	platformName := flag.String("platform", "TIKTOK", "Platform: TIKTOK or INSTAGRAM")
	handle := flag.String("handle", "", "Profile handle to analyze")
	force := flag.Bool("force", false, "Discard cached session state before running")
	rapidAPIKey := flag.String("rapidapi-key", os.Getenv("RAPIDAPI_KEY"), "RapidAPI key for upstream calls")
	openAIKey := flag.String("openai-key", os.Getenv("OPENAI_API_KEY"), "OpenAI key for promo classification (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for the identifier cache")
	useMemory := flag.Bool("use-memory", false, "Use in-memory identifier cache instead of PostgreSQL")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[pipeline] ", log.LstdFlags)
	if !*verbose {
		logger.SetOutput(os.Stderr)
	}

	platform := domain.Platform(strings.ToUpper(*platformName))
	if !platform.Valid() {
		logger.Fatalf("Unknown platform %q (expected TIKTOK or INSTAGRAM)", *platformName)
	}
	if *handle == "" {
		logger.Fatal("--handle is required")
	}
	if *rapidAPIKey == "" {
		logger.Fatal("--rapidapi-key is required (or set RAPIDAPI_KEY)")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory caching)")
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling run...\n", sig)
		cancel()
	}()

	store, cleanup, err := createIdentifierStore(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create identifier store: %v", err)
	}
	defer cleanup()

	adapter, err := upstream.ForPlatform(platform, *rapidAPIKey)
	if err != nil {
		logger.Fatalf("Failed to create platform adapter: %v", err)
	}

	var classifier promo.Classifier
	if *openAIKey != "" {
		classifier = promo.NewOpenAIClient(*openAIKey)
	}

	runner := pipeline.NewRunner(pipeline.Options{
		Platform:   adapter,
		Store:      store,
		Classifier: classifier,
		Sessions:   session.NewManager(),
		Logger:     logger,
	})

	result, err := runner.Run(ctx, *handle, *force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(result)
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

func printSummary(result *pipeline.Result) {
	fmt.Printf("=== %s @%s ===\n", result.Platform, result.Handle)
	fmt.Printf("Posts fetched: %d (chunks: %d, stop: %v)\n", len(result.Posts), result.Chunks, result.StopReasons)
	if result.FromCache {
		fmt.Printf("Source: session cache (fetched %s)\n", result.FetchedAt.Format(time.RFC3339))
	}

	s := result.Stats
	fmt.Printf("Sample size (mature posts): %d\n", s.SampleSize)
	fmt.Printf("Avg posts/day:    %.2f\n", s.AvgPostsPerDay)
	fmt.Printf("Avg views:        %d\n", s.AvgViews)
	fmt.Printf("Median views:     %d\n", s.MedianViews)
	fmt.Printf("Avg engagement:   %.4f\n", s.AvgEngagementRate)
	fmt.Printf("Med engagement:   %.4f\n", s.MedEngagementRate)

	fmt.Printf("Activity (last %d days, max %d/day):\n", stats.DaysWindow, result.Activity.MaxCount)
	var line strings.Builder
	for _, day := range result.Activity.Days {
		line.WriteString(fmt.Sprintf("%d", stats.LevelFor(day.Count, result.Activity.MaxCount)))
	}
	fmt.Printf("  %s\n", line.String())

	if result.PromoError != "" {
		fmt.Printf("Promo detection unavailable: %s\n", result.PromoError)
		return
	}
	fmt.Printf("Promos detected: %d\n", len(result.Promos))
	for _, p := range result.Promos {
		brand := "?"
		if p.Brand != nil {
			brand = *p.Brand
		}
		category := "?"
		if p.Category != nil {
			category = *p.Category
		}
		when := "undated"
		if p.TakenAt != nil {
			when = p.TakenAt.Format("2006-01-02")
		}
		fmt.Printf("  %s  %-20s %-10s conf=%.2f  %s\n", when, brand, category, p.Confidence, p.URL)
	}
}
