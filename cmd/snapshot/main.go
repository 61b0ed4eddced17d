// Command snapshot reads every configured feed once and writes the normalized
// records as JSON fixtures: one file per source plus the aggregate.
//
// Usage:
//
//	go run ./cmd/snapshot \
//	  -out data/snapshot \
//	  -at 2025-03-03T08:30:00Z
//
// Feed paths and the coordinate policy come from the usual FEED_*_PATH and
// COORDINATE_POLICY variables unless overridden with flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/traffic-cams-service/internal/adapter/feed"
	"github.com/couchcryptid/traffic-cams-service/internal/config"
	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	"github.com/couchcryptid/traffic-cams-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

type options struct {
	outDir  string
	at      time.Time // zero means real time
	paths   map[domain.Source]string
	policy  domain.CoordinatePolicy
	timeout time.Duration
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	outDir := flag.String("out", "data/snapshot", "directory to write snapshot JSON into")
	at := flag.String("at", "", "fixed RFC3339 generation time for reproducible output")
	policy := flag.String("policy", string(cfg.CoordinatePolicy), "coordinate policy: drop or keep")
	overrides := make(map[domain.Source]*string, len(domain.Sources))
	for _, src := range domain.Sources {
		overrides[src] = flag.String(string(src), cfg.FeedPaths[src], "path to the "+string(src)+" feed")
	}
	flag.Parse()

	opts := options{
		outDir:  *outDir,
		paths:   make(map[domain.Source]string, len(overrides)),
		timeout: cfg.AggregateTimeout,
	}
	for src, p := range overrides {
		opts.paths[src] = *p
	}
	if opts.policy, err = domain.ParseCoordinatePolicy(*policy); err != nil {
		return err
	}
	if *at != "" {
		if opts.at, err = time.Parse(time.RFC3339, *at); err != nil {
			return fmt.Errorf("invalid -at: %w", err)
		}
	}

	return writeSnapshots(context.Background(), opts)
}

func writeSnapshots(ctx context.Context, opts options) error {
	if !opts.at.IsZero() {
		domain.SetClock(clockwork.NewFakeClockAt(opts.at))
		defer domain.SetClock(nil)
	}

	extractors, err := feed.NewFileExtractors(opts.paths)
	if err != nil {
		return err
	}
	p := pipeline.New(extractors, pipeline.NewTransformer(opts.policy), slog.Default(),
		observability.NewUnregisteredMetrics(), opts.timeout)

	var failed []error
	for _, e := range extractors {
		records, err := p.Source(ctx, e.Source())
		if err != nil {
			failed = append(failed, err)
			log.Printf("%s: %v", e.Source(), err)
			continue
		}
		path := filepath.Join(opts.outDir, string(e.Source())+".json")
		if err := writeJSON(path, domain.NewSnapshot(records)); err != nil {
			return fmt.Errorf("writing %s snapshot: %w", e.Source(), err)
		}
		log.Printf("%s: %d records -> %s", e.Source(), len(records), path)
	}

	all, err := p.All(ctx)
	if err != nil {
		return errors.Join(append(failed, err)...)
	}
	path := filepath.Join(opts.outDir, "all.json")
	if err := writeJSON(path, domain.NewSnapshot(all)); err != nil {
		return fmt.Errorf("writing aggregate snapshot: %w", err)
	}
	log.Printf("all: %d records -> %s", len(all), path)

	return errors.Join(failed...)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
