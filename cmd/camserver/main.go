// Command camserver serves the Madrid traffic camera and radar feeds as JSON
// for the map UI.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/traffic-cams-service/internal/adapter/feed"
	httpadapter "github.com/couchcryptid/traffic-cams-service/internal/adapter/http"
	"github.com/couchcryptid/traffic-cams-service/internal/adapter/markers"
	"github.com/couchcryptid/traffic-cams-service/internal/config"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	"github.com/couchcryptid/traffic-cams-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	extractors, err := feed.NewFileExtractors(cfg.FeedPaths)
	if err != nil {
		logger.Error("failed to create feed extractors", "error", err)
		os.Exit(1)
	}
	for _, e := range extractors {
		logger.Info("feed configured", "source", e.Source(), "path", e.Path())
	}

	transformer := pipeline.NewTransformer(cfg.CoordinatePolicy)
	p := pipeline.New(extractors, transformer, logger, metrics, cfg.AggregateTimeout)

	renderer, err := markers.NewRenderer(cfg.MarkerCacheSize, metrics)
	if err != nil {
		logger.Error("failed to create marker renderer", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.CORSAllowedOrigins, p, renderer, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("service started",
		"coordinate_policy", cfg.CoordinatePolicy,
		"aggregate_timeout", cfg.AggregateTimeout,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
