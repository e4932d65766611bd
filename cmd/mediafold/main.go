package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mediafold/mediafold/internal/api"
	"github.com/mediafold/mediafold/internal/authority"
	"github.com/mediafold/mediafold/internal/config"
	"github.com/mediafold/mediafold/internal/health"
	"github.com/mediafold/mediafold/internal/library"
	"github.com/mediafold/mediafold/internal/media"
	"github.com/mediafold/mediafold/internal/metrics"
	"github.com/mediafold/mediafold/internal/normalize"
	"github.com/mediafold/mediafold/internal/service"
	"github.com/mediafold/mediafold/internal/source"
	"github.com/mediafold/mediafold/internal/tmdb"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting mediafold", "config", *configPath)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure required directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("Failed to create directories", "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := library.NewDB(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database initialized", "path", cfg.Database.Path)

	workRepo := library.NewWorkRepository(db)

	// Initialize dead-variant registry
	healthStore, err := health.NewBadgerStore(cfg.HealthStore.Path)
	if err != nil {
		slog.Error("Failed to open health store", "error", err)
		os.Exit(1)
	}
	defer healthStore.Close()
	slog.Info("Health store initialized", "path", cfg.HealthStore.Path)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	registry.MustRegister(metrics.NewLibraryCollector(workRepo))

	// Initialize the normalization engine
	prefs := cfg.NormalizePreferences()
	hints := map[media.Pipeline]normalize.HintBuilder{
		media.PipelineChat: source.NewChatAdapter(),
		media.PipelineIPTV: source.NewIPTVAdapter(""),
	}
	engine := normalize.NewEngine(
		normalize.NewResolver(),
		normalize.NewDeriver(healthStore, hints),
	)

	// Initialize enrichment against the external authority
	var enricher *service.Enricher
	if cfg.TMDB.APIKey != "" {
		matcher, err := authority.NewMatcher(tmdb.NewClient(cfg.TMDB.APIKey), cfg.AuthorityMatcher(), m)
		if err != nil {
			slog.Error("Failed to initialize authority matcher", "error", err)
			os.Exit(1)
		}
		enricher, err = service.NewEnricher(matcher, workRepo, cfg.Enrichment.Workers)
		if err != nil {
			slog.Error("Failed to initialize enricher", "error", err)
			os.Exit(1)
		}
		slog.Info("Authority enrichment enabled", "workers", cfg.Enrichment.Workers)
	} else {
		slog.Warn("TMDB API key not configured, enrichment disabled")
	}

	// Initialize servers
	apiServer := api.NewServer(engine, prefs, workRepo, healthStore, enricher, m)
	metricsServer := metrics.NewServer(cfg.Server.MetricsPort, registry)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: apiServer.Handler(),
	}

	// Start servers in goroutines
	go func() {
		slog.Info("Starting REST API server", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("REST API server error", "error", err)
		}
	}()

	go func() {
		if err := metricsServer.Start(); err != nil {
			slog.Error("Metrics server error", "error", err)
		}
	}()

	slog.Info("mediafold is ready",
		"api_url", fmt.Sprintf("http://localhost:%d/api/v1", cfg.Server.HTTPPort),
		"metrics_url", fmt.Sprintf("http://localhost:%d/metrics", cfg.Server.MetricsPort),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	slog.Info("Received signal, shutting down", "signal", sig)

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("REST API server shutdown error", "error", err)
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		slog.Error("Metrics server shutdown error", "error", err)
	}

	slog.Info("mediafold stopped")
}
