package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	"github.com/couchcryptid/traffic-cams-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	source   domain.Source
	raws     []domain.RawRecord
	err      error
	panicMsg string
	stall    chan struct{} // when set, Extract blocks until closed, ignoring ctx
	probeErr error
	calls    atomic.Int64
}

func (m *mockExtractor) Source() domain.Source { return m.source }

func (m *mockExtractor) Extract(_ context.Context) ([]domain.RawRecord, error) {
	m.calls.Add(1)
	if m.stall != nil {
		<-m.stall
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.raws, nil
}

func (m *mockExtractor) Probe(_ context.Context) error { return m.probeErr }

type mockLoader struct {
	loaded []domain.Record
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, records []domain.Record) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, records...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- fixtures ---

func urbanasRaw(id string) domain.RawRecord {
	return domain.RawRecord{Shape: domain.ShapeKML, Line: 1, Fields: map[string]string{
		"ext.Numero": id, "name": "Cam " + id, "lat": "40.41", "lon": "-3.70",
	}}
}

func m30Raw(name string) domain.RawRecord {
	return domain.RawRecord{Shape: domain.ShapeM30Catalog, Line: 1, Fields: map[string]string{
		"Nombre": name, "Posicion.Latitud": "40.42", "Posicion.Longitud": "-3.71",
	}}
}

func radarRaw(id string) domain.RawRecord {
	return domain.RawRecord{Shape: domain.ShapeRadarComma, Line: 1, Fields: map[string]string{
		"0": id, "1": "fijo", "2": "Radar " + id, "3": "40.43", "4": "-3.69", "5": "50",
	}}
}

func dgtRaw(id string) domain.RawRecord {
	const coords = "pointLocation.tpegPointLocation.point.pointCoordinates"
	return domain.RawRecord{Shape: domain.ShapeDATEX, Line: 1, Fields: map[string]string{
		"@id": id, "typeOfDevice": "camera", coords + ".latitude": "40.45", coords + ".longitude": "-3.85",
	}}
}

func healthyExtractors() map[domain.Source]*mockExtractor {
	return map[domain.Source]*mockExtractor{
		domain.SourceUrbanas: {source: domain.SourceUrbanas, raws: []domain.RawRecord{urbanasRaw("06304")}},
		domain.SourceM30:     {source: domain.SourceM30, raws: []domain.RawRecord{m30Raw("M30-01"), m30Raw("M30-02")}},
		domain.SourceRadares: {source: domain.SourceRadares, raws: []domain.RawRecord{radarRaw("R1")}},
		domain.SourceDGT:     {source: domain.SourceDGT, raws: []domain.RawRecord{dgtRaw("1001")}},
	}
}

// newPipeline passes the extractors in reverse source order to prove New reorders them.
func newPipeline(exts map[domain.Source]*mockExtractor, timeout time.Duration) *pipeline.Pipeline {
	list := make([]pipeline.Extractor, 0, len(exts))
	for i := len(domain.Sources) - 1; i >= 0; i-- {
		if e, ok := exts[domain.Sources[i]]; ok {
			list = append(list, e)
		}
	}
	return pipeline.New(list, pipeline.NewTransformer(domain.PolicyDrop), slog.Default(), newTestMetrics(), timeout)
}

func recordIDs(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// --- tests ---

func TestPipeline_All_FixedSourceOrder(t *testing.T) {
	p := newPipeline(healthyExtractors(), time.Second)

	records, err := p.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"06304", "M30-01", "M30-02", "R1", "dgt_1001"}, recordIDs(records))
}

func TestPipeline_All_IsolatesFailingSource(t *testing.T) {
	exts := healthyExtractors()
	exts[domain.SourceM30].err = errors.New("decode m30: unexpected EOF")
	p := newPipeline(exts, time.Second)

	records, err := p.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"06304", "R1", "dgt_1001"}, recordIDs(records))
}

func TestPipeline_All_IsolatesPanickingSource(t *testing.T) {
	exts := healthyExtractors()
	exts[domain.SourceRadares].panicMsg = "index out of range"
	p := newPipeline(exts, time.Second)

	records, err := p.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"06304", "M30-01", "M30-02", "dgt_1001"}, recordIDs(records))
}

func TestPipeline_All_TotalFailure(t *testing.T) {
	exts := healthyExtractors()
	for _, e := range exts {
		e.err = errors.New("missing file")
	}
	p := newPipeline(exts, time.Second)

	records, err := p.All(context.Background())
	require.ErrorIs(t, err, pipeline.ErrTotalFailure)
	assert.Nil(t, records)
}

func TestPipeline_All_DeadlineIsTotalFailure(t *testing.T) {
	stall := make(chan struct{})
	t.Cleanup(func() { close(stall) })

	exts := healthyExtractors()
	exts[domain.SourceDGT].stall = stall
	p := newPipeline(exts, 50*time.Millisecond)

	start := time.Now()
	records, err := p.All(context.Background())
	require.ErrorIs(t, err, pipeline.ErrTotalFailure)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, records)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPipeline_All_EmptySourcesEncodeAsEmptyArray(t *testing.T) {
	exts := map[domain.Source]*mockExtractor{
		domain.SourceRadares: {source: domain.SourceRadares},
	}
	p := newPipeline(exts, time.Second)

	records, err := p.All(context.Background())
	require.NoError(t, err)
	data, err := json.Marshal(records)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestPipeline_Source_MatchesSubsetOfAll(t *testing.T) {
	p := newPipeline(healthyExtractors(), time.Second)
	ctx := context.Background()

	all, err := p.All(ctx)
	require.NoError(t, err)

	for _, src := range domain.Sources {
		t.Run(string(src), func(t *testing.T) {
			single, err := p.Source(ctx, src)
			require.NoError(t, err)

			var subset []domain.Record
			for _, r := range all {
				if r.Source == src {
					subset = append(subset, r)
				}
			}
			if diff := cmp.Diff(subset, single); diff != "" {
				t.Fatalf("single-source output differs from /all subset (-all +single):\n%s", diff)
			}
		})
	}
}

func TestPipeline_Source_Idempotent(t *testing.T) {
	p := newPipeline(healthyExtractors(), time.Second)
	ctx := context.Background()

	first, err := p.Source(ctx, domain.SourceUrbanas)
	require.NoError(t, err)
	second, err := p.Source(ctx, domain.SourceUrbanas)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestPipeline_Source_Errors(t *testing.T) {
	exts := healthyExtractors()
	decodeErr := errors.New("decode m30: unknown document shape")
	exts[domain.SourceM30].err = decodeErr
	delete(exts, domain.SourceDGT)
	p := newPipeline(exts, time.Second)

	_, err := p.Source(context.Background(), domain.SourceM30)
	require.ErrorIs(t, err, decodeErr)

	_, err = p.Source(context.Background(), domain.SourceDGT)
	require.ErrorIs(t, err, pipeline.ErrSourceNotConfigured)
}

func TestPipeline_Source_UnexpectedShapeFails(t *testing.T) {
	exts := healthyExtractors()
	exts[domain.SourceDGT].raws = []domain.RawRecord{radarRaw("R9")}
	p := newPipeline(exts, time.Second)

	_, err := p.Source(context.Background(), domain.SourceDGT)
	require.ErrorIs(t, err, domain.ErrUnexpectedShape)
}

func TestPipeline_CheckReadiness(t *testing.T) {
	exts := healthyExtractors()
	for _, e := range exts {
		e.probeErr = errors.New("no such file")
	}
	p := newPipeline(exts, time.Second)
	require.Error(t, p.CheckReadiness(context.Background()))

	exts[domain.SourceRadares].probeErr = nil
	require.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Export(t *testing.T) {
	p := newPipeline(healthyExtractors(), time.Second)
	ldr := &mockLoader{}

	n, err := p.Export(context.Background(), ldr)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []string{"06304", "M30-01", "M30-02", "R1", "dgt_1001"}, recordIDs(ldr.loaded))
}

func TestPipeline_Export_LoaderError(t *testing.T) {
	p := newPipeline(healthyExtractors(), time.Second)
	ldr := &mockLoader{err: errors.New("broker unavailable")}

	_, err := p.Export(context.Background(), ldr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}
