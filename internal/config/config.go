package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration

	// FeedPaths maps every source to the local file it is read from.
	FeedPaths        map[domain.Source]string
	AggregateTimeout time.Duration
	CoordinatePolicy domain.CoordinatePolicy

	CORSAllowedOrigins []string
	MarkerCacheSize    int

	KafkaBrokers     []string
	KafkaExportTopic string
}

var feedEnv = map[domain.Source]struct{ key, def string }{
	domain.SourceUrbanas: {"FEED_URBANAS_PATH", "data/urbanas/trafico-camaras.kml"},
	domain.SourceM30:     {"FEED_M30_PATH", "data/m30/calle30-camaras.xml"},
	domain.SourceRadares: {"FEED_RADARES_PATH", "data/radares/radares-fijos-moviles.csv"},
	domain.SourceDGT:     {"FEED_DGT_PATH", "data/dgt/camaras_datex2_v36.xml"},
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present; it never
// overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	aggregateTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("AGGREGATE_TIMEOUT", "10s"))
	if err != nil || aggregateTimeout <= 0 {
		return nil, errors.New("invalid AGGREGATE_TIMEOUT")
	}

	policy, err := domain.ParseCoordinatePolicy(sharedcfg.EnvOrDefault("COORDINATE_POLICY", string(domain.PolicyDrop)))
	if err != nil {
		return nil, fmt.Errorf("invalid COORDINATE_POLICY: %w", err)
	}

	markerCacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("MARKER_CACHE_SIZE", "16"))
	if err != nil || markerCacheSize <= 0 {
		return nil, errors.New("invalid MARKER_CACHE_SIZE")
	}

	logFormat := sharedcfg.EnvOrDefault("LOG_FORMAT", "json")
	if logFormat != "json" && logFormat != "text" {
		return nil, errors.New("invalid LOG_FORMAT")
	}

	feedPaths := make(map[domain.Source]string, len(feedEnv))
	for src, env := range feedEnv {
		feedPaths[src] = sharedcfg.EnvOrDefault(env.key, env.def)
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          logFormat,
		LogFile:            sharedcfg.EnvOrDefault("LOG_FILE", ""),
		ShutdownTimeout:    shutdownTimeout,
		FeedPaths:          feedPaths,
		AggregateTimeout:   aggregateTimeout,
		CoordinatePolicy:   policy,
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		MarkerCacheSize:    markerCacheSize,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaExportTopic:   sharedcfg.EnvOrDefault("KAFKA_EXPORT_TOPIC", "traffic-camera-records"),
	}

	for _, src := range domain.Sources {
		if cfg.FeedPaths[src] == "" {
			return nil, fmt.Errorf("%s is required", feedEnv[src].key)
		}
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return nil, errors.New("CORS_ALLOWED_ORIGINS is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaExportTopic == "" {
		return nil, errors.New("KAFKA_EXPORT_TOPIC is required")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
