package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordService produces normalized records per source or for every source.
type RecordService interface {
	Source(ctx context.Context, src domain.Source) ([]domain.Record, error)
	All(ctx context.Context) ([]domain.Record, error)
	sharedobs.ReadinessChecker
}

// MarkerRenderer renders the SVG map pin for a source and kind.
type MarkerRenderer interface {
	Render(src domain.Source, kind domain.Kind) ([]byte, error)
}

// Server exposes the camera query routes plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	records    RecordService
	markers    MarkerRenderer
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server for the given record service. Responses
// are gzip-compressed for clients that accept it.
func NewServer(addr string, corsOrigins []string, records RecordService, markers MarkerRenderer, logger *slog.Logger, metrics *observability.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      gzhttp.GzipHandler(engine),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		records: records,
		markers: markers,
		logger:  logger,
		metrics: metrics,
	}

	engine.Use(
		s.recovery(),
		requestID(),
		s.accessLog(),
		s.countRequests(),
		cors.New(corsConfig(corsOrigins)),
	)
	s.registerRoutes(engine)

	return s
}

func (s *Server) registerRoutes(engine *gin.Engine) {
	cameras := engine.Group("/cameras")
	for _, src := range domain.Sources {
		cameras.GET("/"+string(src), s.handleSource(src))
	}
	cameras.GET("/all", s.handleAll)

	engine.GET("/markers/:source/:kind", s.handleMarker)

	engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(s.records)))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
