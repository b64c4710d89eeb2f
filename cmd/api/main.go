package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rawda/internal/config"
	"rawda/internal/corpus"
	"rawda/internal/handlers"
	"rawda/internal/http"
	"rawda/internal/markup"
	"rawda/internal/paginate"
	"rawda/internal/search"
	"rawda/internal/service"
	"rawda/internal/storage"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API serves the Arabic books and articles corpus: chapter reading pages,
// paginated and live search, and the site's reading counters.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Rawda API
//   description: |
//     Reading and search API over the published JSON corpus of articles and books.
//     Chapters are rendered with footnotes, images and justified verse.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	counterRepo := storage.NewCounterRepo(db)
	preferenceRepo := storage.NewPreferenceRepo(db)

	// Content source
	var fetcher corpus.Fetcher
	if cfg.RemoteContent() {
		fetcher = corpus.NewHTTPFetcher(cfg.ContentBaseURL, cfg.FetchTimeout)
		slog.Info("Serving content over HTTP", "base_url", cfg.ContentBaseURL)
	} else {
		fetcher = corpus.NewFSFetcher(cfg.ContentDir)
		slog.Info("Serving content from disk", "dir", cfg.ContentDir)
	}
	accessor := corpus.NewAccessor(fetcher, cfg.Collections(), corpus.WithCache(cfg.CacheTTL))

	if !cfg.RemoteContent() && cfg.WatchContent && cfg.CacheTTL > 0 {
		watcher, err := corpus.NewWatcher(accessor, cfg.ContentDir)
		if err != nil {
			slog.Warn("Content watcher disabled", "error", err)
		} else {
			defer func() {
				_ = watcher.Close()
			}()
			go watcher.Run(ctx)
			slog.Info("Watching content for changes", "dir", cfg.ContentDir)
		}
	}

	// Verse justification uses real glyph advances when a font is configured
	var measurer markup.Measurer
	if cfg.VerseFontPath != "" {
		fm, err := markup.LoadFontMeasurer(cfg.VerseFontPath, cfg.VerseFontSize)
		if err != nil {
			log.Fatalf("Failed to load verse font: %v", err)
		}
		defer func() {
			_ = fm.Close()
		}()
		measurer = fm
		slog.Info("Verse font loaded", "path", cfg.VerseFontPath, "size", cfg.VerseFontSize)
	}
	renderer := markup.NewRenderer(markup.Options{
		VerseWidth: cfg.VerseWidth,
		Measurer:   measurer,
	})

	scanner := search.NewScanner(accessor,
		search.WithConcurrency(cfg.FetchConcurrency),
		search.WithTimeout(cfg.SearchTimeout),
	)

	// Create services
	readerService := service.NewReaderService(accessor, renderer, counterRepo)
	searchService := service.NewSearchService(scanner, paginate.New(cfg.PageSize))

	// Create router with dependencies
	deps := &http.Deps{
		ReaderService:   readerService,
		SearchService:   searchService,
		Searcher:        scanner,
		CounterStore:    counterRepo,
		PreferenceStore: preferenceRepo,
		Presence:        handlers.NewPresence(),
		HealthChecks: map[string]handlers.CheckFunc{
			"content":  accessor.Ping,
			"database": db.PingContext,
		},
		LiveOptions: handlers.LiveOptions{
			Debounce:   cfg.SearchDebounce,
			Timeout:    cfg.SearchTimeout,
			MaxResults: cfg.PageSize,
		},
		SearchRateLimit: cfg.SearchRateLimit,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
	slog.Info("API server stopped")
}
