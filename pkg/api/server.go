// Package api exposes the security graph analysis engine over HTTP. Every
// request rebuilds its graph from current entity data, so requests are
// independent and safe to run concurrently without locks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aegisops/secgraph/pkg/analysis"
	"github.com/aegisops/secgraph/pkg/graph"
	"github.com/aegisops/secgraph/pkg/health"
	"github.com/aegisops/secgraph/pkg/logging"
	"github.com/aegisops/secgraph/pkg/metrics"
)

// Options configures the API server.
type Options struct {
	// AnalysisTimeout bounds one analysis request end to end.
	AnalysisTimeout time.Duration
	// Workers bounds the betweenness BFS fan-out; 0 means per-CPU.
	Workers int
	// DecayFactor is the default per-hop blast-radius attenuation.
	DecayFactor float64
	Version     string
}

// DefaultOptions returns the standard server configuration.
func DefaultOptions() Options {
	return Options{
		AnalysisTimeout: 30 * time.Second,
		DecayFactor:     analysis.DefaultDecayFactor,
		Version:         "1.0.0",
	}
}

// Server handles the security-graph HTTP API.
type Server struct {
	builder   *graph.Builder
	logger    logging.Logger
	metrics   *metrics.Registry
	health    *health.Checker
	opts      Options
	startTime time.Time
}

// NewServer creates an API server over the given graph builder.
func NewServer(builder *graph.Builder, logger logging.Logger, registry *metrics.Registry, checker *health.Checker, opts Options) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	if checker == nil {
		checker = health.NewChecker()
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = DefaultOptions().AnalysisTimeout
	}
	if opts.DecayFactor <= 0 || opts.DecayFactor > 1 {
		opts.DecayFactor = analysis.DefaultDecayFactor
	}
	if opts.Version == "" {
		opts.Version = DefaultOptions().Version
	}
	return &Server{
		builder:   builder,
		logger:    logger,
		metrics:   registry,
		health:    checker,
		opts:      opts,
		startTime: time.Now(),
	}
}

// Routes returns the handler tree with middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /security-graph/folder/{folder_id}/critical-nodes/{$}", s.handleCriticalNodes)
	mux.HandleFunc("GET /security-graph/folder/{folder_id}/graph/{$}", s.handleGraphView)
	mux.HandleFunc("POST /security-graph/blast-radius/{$}", s.handleBlastRadius)
	mux.HandleFunc("POST /security-graph/concentration/{$}", s.handleConcentration)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	var handler http.Handler = mux
	handler = s.metricsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.requestIDMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if status.Status == health.StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	s.respondJSON(w, httpStatus, HealthResponse{
		Status:    string(status.Status),
		Timestamp: status.Timestamp,
		Version:   s.opts.Version,
		Uptime:    time.Since(s.startTime).String(),
		Checks:    status.Checks,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   message,
		Message: http.StatusText(status),
		Code:    status,
	})
}

// respondAnalysisError maps the engine's error taxonomy onto HTTP statuses:
// unknown folder or node is 404, malformed or degenerate input is 400, a
// timed-out computation is 503, anything else is a sanitized 500.
func (s *Server) respondAnalysisError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, graph.ErrFolderNotFound), errors.Is(err, graph.ErrNodeNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case analysis.IsValidationError(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrDegenerateInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.respondError(w, http.StatusServiceUnavailable, operation+" timed out")
	default:
		s.logger.Error(operation+" failed", logging.Error(err))
		s.respondError(w, http.StatusInternalServerError, operation+" failed")
	}
}
