package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aegisops/secgraph/pkg/graph"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordGraphBuild records a graph assembly and its size
func (r *Registry) RecordGraphBuild(g *graph.Graph, duration time.Duration) {
	r.GraphBuildDuration.Observe(duration.Seconds())
	r.GraphNodes.Observe(float64(g.NodeCount()))
	r.GraphEdges.Observe(float64(g.EdgeCount()))
}

// RecordAnalysis records one analysis stage execution
func (r *Registry) RecordAnalysis(stage string, duration time.Duration, err error) {
	r.AnalysisDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		r.AnalysisErrorsTotal.WithLabelValues(stage).Inc()
	}
}

// RecordPageRankNonConvergence counts a run that hit the iteration cap
func (r *Registry) RecordPageRankNonConvergence() {
	r.PageRankNonConvergedTotal.Inc()
}

// RecordBlastRadius records the size of one propagation result
func (r *Registry) RecordBlastRadius(affected int) {
	r.BlastRadiusAffectedNodes.Observe(float64(affected))
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
