package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.GraphBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "secgraph_graph_build_duration_seconds",
			Help:    "Time spent assembling a folder graph",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "secgraph_graph_nodes",
			Help:    "Node count of built graphs",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "secgraph_graph_edges",
			Help:    "Edge count of built graphs",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "secgraph_analysis_duration_seconds",
			Help:    "Analysis stage latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	r.AnalysisErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "secgraph_analysis_errors_total",
			Help: "Analysis failures by stage",
		},
		[]string{"stage"},
	)

	r.PageRankNonConvergedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "secgraph_pagerank_nonconverged_total",
			Help: "PageRank runs that hit the iteration cap before converging",
		},
	)

	r.BlastRadiusAffectedNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "secgraph_blast_radius_affected_nodes",
			Help:    "Affected node count per blast-radius simulation",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)
}
