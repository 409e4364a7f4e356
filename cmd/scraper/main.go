package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/eslam-allam/cult-beauty/internal/api"
	"github.com/eslam-allam/cult-beauty/internal/browser"
	"github.com/eslam-allam/cult-beauty/internal/catalog"
	"github.com/eslam-allam/cult-beauty/internal/config"
	"github.com/eslam-allam/cult-beauty/internal/crawler"
	"github.com/eslam-allam/cult-beauty/internal/database"
	"github.com/eslam-allam/cult-beauty/internal/events"
	"github.com/eslam-allam/cult-beauty/internal/export"
	"github.com/eslam-allam/cult-beauty/internal/extract"
	"github.com/eslam-allam/cult-beauty/internal/ratelimit"
	"github.com/eslam-allam/cult-beauty/internal/session"
	"github.com/eslam-allam/cult-beauty/pkg/logger"
)

func main() {
	var (
		categories = flag.String("categories", "", "Comma-separated category listing URLs (overrides CATEGORY_URLS)")
		headless   = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	// Missing .env is fine, environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *categories != "" {
		cfg.Extraction.CategoryURLs = strings.Split(*categories, ",")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// Resource teardown lives in run's defers; exiting from main directly
	// would skip them and leak the playwright processes.
	if err := run(cfg, *headless, logger); err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, headless bool, logger *slog.Logger) error {
	logger.Info("Starting Cult Beauty extractor",
		"categories", len(cfg.Extraction.CategoryURLs),
		"workers", cfg.Extraction.Workers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       headless && cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		return fmt.Errorf("initialize browser: %w", err)
	}
	defer b.Close()

	factory := func() (session.Session, func() error, error) {
		page, err := b.NewPage()
		if err != nil {
			return nil, nil, err
		}
		sess := browser.NewSession(page, cfg.Browser.Timeout)
		return sess, func() error { return page.Close() }, nil
	}

	walkerOpts := crawler.WalkerOptions{
		Extractor: extract.Options{
			Retry:            extract.RetryPolicy{MaxAttempts: cfg.Extraction.MaxRetries},
			PresenceTimeout:  cfg.Extraction.PresenceTimeout,
			StalenessTimeout: cfg.Extraction.StalenessTimeout,
			Tags: extract.VariationTags{
				Color:  cfg.Extraction.ColorTags,
				Shade:  cfg.Extraction.ShadeTags,
				Size:   cfg.Extraction.SizeTags,
				Option: cfg.Extraction.OptionTags,
			},
		},
		Currency:        cfg.Extraction.Currency,
		SetupTimeout:    cfg.Extraction.SetupTimeout,
		PresenceTimeout: cfg.Extraction.PresenceTimeout,
		Limiter:         ratelimit.NewFixedDelay(cfg.Extraction.ActionDelay),
	}

	pool := crawler.NewPool(cfg.Extraction.Workers, factory, walkerOpts, logger)

	runID := uuid.NewString()

	var publisher *events.Publisher
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()
		publisher = events.NewPublisher(client, cfg.Redis.Stream, runID, logger)
		pool.SetNotifier(publisher)
	}

	if cfg.API.Enabled {
		server := api.NewServer(cfg.API.Addr, pool, logger)
		server.Start()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("API shutdown failed", "error", err)
			}
		}()
	}

	startedAt := time.Now().UTC()
	table := pool.Run(ctx, cfg.Extraction.CategoryURLs)
	logger.Info("Extraction finished", "rows", table.Len())

	if err := export.WriteCSV(cfg.Extraction.WithDuplicates, table); err != nil {
		logger.Error("Failed to write raw catalog", "path", cfg.Extraction.WithDuplicates, "error", err)
	}

	reconciled, err := catalog.NewReconciler(logger).Reconcile(table)
	if err != nil {
		return fmt.Errorf("reconcile catalog: %w", err)
	}
	cleaned := catalog.NewCleaner(logger).Clean(reconciled)

	if err := export.WriteCSV(cfg.Extraction.Deduplicated, cleaned); err != nil {
		logger.Error("Failed to write reconciled catalog", "path", cfg.Extraction.Deduplicated, "error", err)
	}

	if cfg.Database.Enabled {
		saveSnapshot(ctx, cfg, cleaned, startedAt, runID, logger)
	}

	if publisher != nil {
		publisher.RunCompleted(ctx, cleaned.Len())
	}

	logger.Info("Run completed", "run_id", runID, "rows", cleaned.Len())
	return nil
}

func saveSnapshot(ctx context.Context, cfg *config.Config, t *catalog.Table, startedAt time.Time, runID string, logger *slog.Logger) {
	db, err := database.New(ctx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.DBName,
		MaxConns:    4,
		MinConns:    1,
		MaxConnLife: time.Hour,
		MaxConnIdle: 30 * time.Minute,
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return
	}
	defer db.Close()

	store := database.NewCatalogStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to ensure catalog schema", "error", err)
		return
	}

	savedID, err := store.SaveRun(ctx, t, len(cfg.Extraction.CategoryURLs), startedAt)
	if err != nil {
		logger.Error("Failed to persist snapshot", "run_id", runID, "error", err)
		return
	}
	logger.Info("Snapshot persisted", "run_id", savedID, "rows", t.Len())
}
