package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the engine
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Analysis Metrics
	GraphBuildDuration        prometheus.Histogram
	GraphNodes                prometheus.Histogram
	GraphEdges                prometheus.Histogram
	AnalysisDuration          *prometheus.HistogramVec
	AnalysisErrorsTotal       *prometheus.CounterVec
	PageRankNonConvergedTotal prometheus.Counter
	BlastRadiusAffectedNodes  prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all metric families registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initHTTPMetrics()
	r.initAnalysisMetrics()
	return r
}

// Prometheus exposes the underlying registry for the /metrics handler and
// for tests that gather families directly.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}
