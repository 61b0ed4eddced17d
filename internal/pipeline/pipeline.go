package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrTotalFailure is returned by All when no source produced a result,
	// either because every stage failed or the aggregate deadline expired.
	ErrTotalFailure = errors.New("aggregate failed")
	// ErrSourceNotConfigured is returned for a source with no extractor.
	ErrSourceNotConfigured = errors.New("source not configured")
)

// Extractor reads and decodes one source's feed.
type Extractor interface {
	Source() domain.Source
	Extract(ctx context.Context) ([]domain.RawRecord, error)
	Probe(ctx context.Context) error
}

// Transformer converts a source's raw records into normalized records.
type Transformer interface {
	Transform(src domain.Source, raws []domain.RawRecord) (domain.Result, error)
}

// BatchLoader writes normalized records to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.Record) error
}

// Pipeline runs the extract-transform stage of every configured source and
// aggregates their output.
type Pipeline struct {
	stages      []Extractor // in domain.Sources order
	bySource    map[domain.Source]Extractor
	transformer Transformer
	logger      *slog.Logger
	metrics     *observability.Metrics
	timeout     time.Duration
}

// New creates a Pipeline. Extractors are reordered into the fixed source
// order; timeout bounds a whole All call.
func New[E Extractor](extractors []E, t Transformer, logger *slog.Logger, metrics *observability.Metrics, timeout time.Duration) *Pipeline {
	bySource := make(map[domain.Source]Extractor, len(extractors))
	for _, e := range extractors {
		bySource[e.Source()] = e
	}
	stages := make([]Extractor, 0, len(bySource))
	for _, src := range domain.Sources {
		if e, ok := bySource[src]; ok {
			stages = append(stages, e)
		}
	}
	return &Pipeline{
		stages:      stages,
		bySource:    bySource,
		transformer: t,
		logger:      logger,
		metrics:     metrics,
		timeout:     timeout,
	}
}

// Source runs one source's stage. Decode errors are returned to the caller.
func (p *Pipeline) Source(ctx context.Context, src domain.Source) ([]domain.Record, error) {
	e, ok := p.bySource[src]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotConfigured, src)
	}
	return p.runStage(ctx, e)
}

// All runs every stage concurrently and concatenates the results in source
// order. A failing or panicking stage is logged and contributes no records.
// All returns ErrTotalFailure, with no records, when every stage failed or
// the aggregate deadline passed first.
func (p *Pipeline) All(ctx context.Context) ([]domain.Record, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make([][]domain.Record, len(p.stages))
	failures := make([]error, len(p.stages))

	var g errgroup.Group
	for i, e := range p.stages {
		g.Go(func() error {
			records, err := p.isolatedStage(ctx, e)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = records
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.metrics.AggregateFailures.Inc()
		p.logger.Error("aggregate deadline exceeded", "timeout", p.timeout)
		return nil, fmt.Errorf("%w: %w", ErrTotalFailure, ctx.Err())
	}

	total, failed := 0, 0
	for i, err := range failures {
		if err != nil {
			failed++
			p.logger.Warn("source failed, contributing no records",
				"source", p.stages[i].Source(),
				"error", err,
			)
			continue
		}
		total += len(results[i])
	}
	if failed == len(p.stages) {
		p.metrics.AggregateFailures.Inc()
		return nil, fmt.Errorf("%w: all %d sources failed", ErrTotalFailure, failed)
	}

	out := make([]domain.Record, 0, total)
	for _, records := range results {
		out = append(out, records...)
	}

	p.metrics.AggregateDuration.Observe(time.Since(start).Seconds())
	p.logger.Debug("aggregate complete", "records", len(out), "failed_sources", failed)
	return out, nil
}

// Export aggregates every source once and hands the records to loader.
func (p *Pipeline) Export(ctx context.Context, loader BatchLoader) (int, error) {
	records, err := p.All(ctx)
	if err != nil {
		return 0, err
	}
	if err := loader.LoadBatch(ctx, records); err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}
	p.metrics.RecordsExported.Add(float64(len(records)))
	return len(records), nil
}

// CheckReadiness returns nil when at least one feed file is readable.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	available := 0
	for _, e := range p.stages {
		if err := e.Probe(ctx); err != nil {
			p.logger.Debug("feed unavailable", "source", e.Source(), "error", err)
			continue
		}
		available++
	}
	p.metrics.FeedsAvailable.Set(float64(available))
	if available == 0 {
		return errors.New("no feed file is readable")
	}
	return nil
}

// isolatedStage runs a stage, converting a panic into that stage's error.
func (p *Pipeline) isolatedStage(ctx context.Context, e Extractor) (records []domain.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.FeedDecodes.WithLabelValues(string(e.Source()), "error").Inc()
			err = fmt.Errorf("source %s panicked: %v", e.Source(), r)
		}
	}()
	return p.runStage(ctx, e)
}

func (p *Pipeline) runStage(ctx context.Context, e Extractor) ([]domain.Record, error) {
	src := e.Source()
	start := time.Now()
	defer func() {
		p.metrics.FeedDuration.WithLabelValues(string(src)).Observe(time.Since(start).Seconds())
	}()

	raws, err := e.Extract(ctx)
	if err != nil {
		p.metrics.FeedDecodes.WithLabelValues(string(src), "error").Inc()
		return nil, err
	}

	res, err := p.transformer.Transform(src, raws)
	if err != nil {
		p.metrics.FeedDecodes.WithLabelValues(string(src), "error").Inc()
		return nil, err
	}

	p.metrics.FeedDecodes.WithLabelValues(string(src), "success").Inc()
	p.metrics.FeedRecords.WithLabelValues(string(src)).Add(float64(len(res.Records)))
	for reason, n := range res.Dropped {
		p.metrics.FeedDropped.WithLabelValues(string(src), string(reason)).Add(float64(n))
	}
	if len(res.Dropped) > 0 {
		p.logger.Debug("records dropped", "source", src, "dropped", res.Dropped)
	}
	return res.Records, nil
}
