// Package main provides the report generator entry point: it runs the
// pipeline for a single profile and writes a Markdown report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/pipeline"
	"influencer-stats/internal/promo"
	"influencer-stats/internal/reporting"
	"influencer-stats/internal/session"
	"influencer-stats/internal/storage"
	"influencer-stats/internal/storage/memory"
	"influencer-stats/internal/storage/migrations"
	pgstore "influencer-stats/internal/storage/postgres"
	"influencer-stats/internal/upstream"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	platformName := flag.String("platform", "TIKTOK", "Platform: TIKTOK or INSTAGRAM")
	handle := flag.String("handle", "", "Profile handle to analyze")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	rapidAPIKey := flag.String("rapidapi-key", os.Getenv("RAPIDAPI_KEY"), "RapidAPI key for upstream calls")
	openAIKey := flag.String("openai-key", os.Getenv("OPENAI_API_KEY"), "OpenAI key for promo classification (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for the identifier cache")
	useMemory := flag.Bool("use-memory", false, "Use in-memory identifier cache instead of PostgreSQL")
	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

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

	ctx := context.Background()

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

	result, err := runner.Run(ctx, *handle, false)
	if err != nil {
		logger.Fatalf("Run failed: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}

	name := fmt.Sprintf("%s_%s.md", strings.ToLower(string(platform)), *handle)
	path := filepath.Join(*outputDir, name)
	if err := os.WriteFile(path, []byte(reporting.RenderMarkdown(result)), 0o644); err != nil {
		logger.Fatalf("Failed to write report: %v", err)
	}

	fmt.Printf("Report written to %s\n", path)
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
