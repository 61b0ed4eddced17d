// Command export aggregates every configured feed once and publishes the
// normalized records to the Kafka export topic.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/traffic-cams-service/internal/adapter/feed"
	kafkaadapter "github.com/couchcryptid/traffic-cams-service/internal/adapter/kafka"
	"github.com/couchcryptid/traffic-cams-service/internal/config"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	"github.com/couchcryptid/traffic-cams-service/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewUnregisteredMetrics()

	extractors, err := feed.NewFileExtractors(cfg.FeedPaths)
	if err != nil {
		logger.Error("failed to create feed extractors", "error", err)
		return 1
	}
	p := pipeline.New(extractors, pipeline.NewTransformer(cfg.CoordinatePolicy), logger, metrics, cfg.AggregateTimeout)

	writer := kafkaadapter.NewWriter(cfg, logger)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := p.Export(ctx, writer)
	if err != nil {
		logger.Error("export failed", "error", err)
		return 1
	}

	logger.Info("export complete", "records", n, "topic", cfg.KafkaExportTopic, "brokers", cfg.KafkaBrokers)
	return 0
}
