package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/traffic-cams-service/internal/adapter/http"
	"github.com/couchcryptid/traffic-cams-service/internal/adapter/markers"
	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	"github.com/couchcryptid/traffic-cams-service/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRecords struct {
	bySource  map[domain.Source][]domain.Record
	sourceErr map[domain.Source]error
	allErr    error
	readyErr  error
}

func (m *mockRecords) Source(_ context.Context, src domain.Source) ([]domain.Record, error) {
	if err := m.sourceErr[src]; err != nil {
		return nil, err
	}
	return append([]domain.Record{}, m.bySource[src]...), nil
}

func (m *mockRecords) All(_ context.Context) ([]domain.Record, error) {
	if m.allErr != nil {
		return nil, m.allErr
	}
	out := []domain.Record{}
	for _, src := range domain.Sources {
		if m.sourceErr[src] == nil {
			out = append(out, m.bySource[src]...)
		}
	}
	return out, nil
}

func (m *mockRecords) CheckReadiness(_ context.Context) error { return m.readyErr }

func sampleRecords() map[domain.Source][]domain.Record {
	return map[domain.Source][]domain.Record{
		domain.SourceUrbanas: {
			{ID: "06304", Name: "Gran Via", Description: "Gran Via", Latitude: 40.4168, Longitude: -3.7038, ImageURL: "https://x.example/cam1.jpg", Source: domain.SourceUrbanas, Kind: domain.KindCamera},
		},
		domain.SourceM30: {
			{ID: "M30-01", Name: "M30-01", Latitude: 40.423, Longitude: -3.717, Source: domain.SourceM30, Kind: domain.KindCamera},
		},
		domain.SourceRadares: {
			{ID: "R1", Name: "Castellana", Latitude: 40.445, Longitude: -3.69, Source: domain.SourceRadares, Kind: domain.KindRadar, RadarType: "fijo", MaxSpeed: "50"},
		},
		domain.SourceDGT: {
			{ID: "dgt_1001", Name: "A-6 PK 12.5", Latitude: 40.451, Longitude: -3.852, Source: domain.SourceDGT, Kind: domain.KindCamera, RoadName: "A-6"},
		},
	}
}

func newTestServer(t *testing.T, records httpadapter.RecordService) *httpadapter.Server {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	renderer, err := markers.NewRenderer(8, metrics)
	require.NoError(t, err)
	return httpadapter.NewServer(":0", []string{"*"}, records, renderer, slog.Default(), metrics)
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeRecords(t *testing.T, rec *httptest.ResponseRecorder) []domain.Record {
	t.Helper()
	var out []domain.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func ids(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestSourceRoutes(t *testing.T) {
	srv := newTestServer(t, &mockRecords{bySource: sampleRecords()})

	for _, src := range domain.Sources {
		t.Run(string(src), func(t *testing.T) {
			rec := get(t, srv, "/cameras/"+string(src))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			got := decodeRecords(t, rec)
			require.Len(t, got, 1)
			assert.Equal(t, src, got[0].Source)
		})
	}
}

func TestSourceRoute_DecodeErrorIsGeneric500(t *testing.T) {
	srv := newTestServer(t, &mockRecords{
		bySource:  sampleRecords(),
		sourceErr: map[domain.Source]error{domain.SourceM30: errors.New("decode m30: unknown document shape: root element \"Webcams\"")},
	})

	rec := get(t, srv, "/cameras/m30")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error parsing M30 XML file"}`, rec.Body.String())
}

func TestAllRoute_IsolatesFailedSource(t *testing.T) {
	srv := newTestServer(t, &mockRecords{
		bySource:  sampleRecords(),
		sourceErr: map[domain.Source]error{domain.SourceM30: errors.New("missing file")},
	})

	rec := get(t, srv, "/cameras/all")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"06304", "R1", "dgt_1001"}, ids(decodeRecords(t, rec)))
}

func TestAllRoute_TotalFailure(t *testing.T) {
	srv := newTestServer(t, &mockRecords{allErr: pipeline.ErrTotalFailure})

	rec := get(t, srv, "/cameras/all")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error loading cameras"}`, rec.Body.String())
}

func TestEmptySourceEncodesAsArray(t *testing.T) {
	srv := newTestServer(t, &mockRecords{bySource: map[domain.Source][]domain.Record{}})

	rec := get(t, srv, "/cameras/dgt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestNonFiniteCoordinatesEncodeAsNull(t *testing.T) {
	srv := newTestServer(t, &mockRecords{bySource: map[domain.Source][]domain.Record{
		domain.SourceRadares: {{ID: "R2", Name: "Radar", Latitude: math.NaN(), Longitude: math.NaN(), Source: domain.SourceRadares, Kind: domain.KindRadar}},
	}})

	rec := get(t, srv, "/cameras/radares")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Nil(t, body[0]["latitude"])
	assert.Nil(t, body[0]["longitude"])
}

func TestQueryParameters(t *testing.T) {
	srv := newTestServer(t, &mockRecords{bySource: sampleRecords()})

	tests := []struct {
		target string
		want   []string
	}{
		{"/cameras/all?sources=m30,dgt", []string{"M30-01", "dgt_1001"}},
		{"/cameras/all?q=castellana", []string{"R1"}},
		{"/cameras/all?sort=name", []string{"dgt_1001", "R1", "06304", "M30-01"}},
		{"/cameras/all?sort=name&order=desc", []string{"M30-01", "06304", "R1", "dgt_1001"}},
		{"/cameras/all?sort=type", []string{"06304", "M30-01", "dgt_1001", "R1"}},
		{"/cameras/urbanas?sources=m30", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, ids(decodeRecords(t, rec)))
		})
	}
}

func TestQueryParameters_Invalid(t *testing.T) {
	srv := newTestServer(t, &mockRecords{bySource: sampleRecords()})

	for _, target := range []string{
		"/cameras/all?sources=tram",
		"/cameras/all?sort=speed",
		"/cameras/dgt?order=sideways",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, srv, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestMarkerRoute(t *testing.T) {
	srv := newTestServer(t, &mockRecords{})

	rec := get(t, srv, "/markers/radares/radar")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, markers.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "#ef4444")
	assert.Contains(t, rec.Body.String(), ">R</text>")

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/markers/tram/camera").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/markers/dgt/sensor").Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &mockRecords{bySource: sampleRecords()})

	rec := get(t, srv, "/cameras/urbanas")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/cameras/urbanas", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSAllowsBrowserOrigin(t *testing.T) {
	srv := newTestServer(t, &mockRecords{bySource: sampleRecords()})

	req := httptest.NewRequest(http.MethodGet, "/cameras/all", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(t, &mockRecords{})
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestReadyz(t *testing.T) {
	ready := newTestServer(t, &mockRecords{})
	assert.Equal(t, http.StatusOK, get(t, ready, "/readyz").Code)

	notReady := newTestServer(t, &mockRecords{readyErr: errors.New("no feed file is readable")})
	assert.Equal(t, http.StatusServiceUnavailable, get(t, notReady, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockRecords{})

	rec := get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &mockRecords{})
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/cameras/tram").Code)
}
