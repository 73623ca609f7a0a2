package analysis

import (
	"math"
	"sort"

	"github.com/aegisops/secgraph/pkg/graph"
)

// Criticality is the label assigned to a node from its composite score.
type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityHigh     Criticality = "high"
	CriticalityMedium   Criticality = "medium"
	CriticalityLow      Criticality = "low"
)

// Composite score weights and label thresholds.
const (
	degreeWeight      = 0.4
	pagerankWeight    = 0.3
	betweennessWeight = 0.3

	criticalThreshold = 0.75
	highThreshold     = 0.5
	mediumThreshold   = 0.25
)

// RiskInfo carries optional per-node risk extensions.
type RiskInfo struct {
	BlastRadiusScore float64 `json:"blast_radius_score"`
}

// CriticalityResult is the classification of one node.
type CriticalityResult struct {
	NodeID      string         `json:"node_id"`
	Name        string         `json:"name"`
	Type        graph.NodeType `json:"type"`
	Criticality Criticality    `json:"criticality"`
	IsHub       bool           `json:"is_hub"`
	Score       float64        `json:"score"`
	Metrics     NodeMetrics    `json:"metrics"`
	Risk        *RiskInfo      `json:"risk,omitempty"`
}

// Classify combines centrality metrics with intrinsic node weight into a
// criticality label and hub flag for every node.
//
// Composite score = 0.4*degree + 0.3*pagerank + 0.3*betweenness, each input
// min-max normalized across the node set first. A degenerate input range
// (max == min) normalizes to 0.
//
// Hub rule: degree > mean(degree) + 2*stddev(degree). The statistical
// outlier rule was chosen over the top-5% rule; see DESIGN.md.
func Classify(g *graph.Graph, metrics *MetricsResult) map[string]*CriticalityResult {
	n := g.NodeCount()
	results := make(map[string]*CriticalityResult, n)
	if n == 0 {
		return results
	}

	degreeF := make([]float64, n)
	for i, d := range metrics.degree {
		degreeF[i] = float64(d)
	}
	normDegree := minMaxNormalize(degreeF)
	normPagerank := minMaxNormalize(metrics.pagerank)
	normBetweenness := minMaxNormalize(metrics.betweenness)

	hubCutoff := hubDegreeCutoff(metrics.degree)

	for i := 0; i < n; i++ {
		node := g.Node(i)
		score := degreeWeight*normDegree[i] +
			pagerankWeight*normPagerank[i] +
			betweennessWeight*normBetweenness[i]

		results[node.ID] = &CriticalityResult{
			NodeID:      node.ID,
			Name:        node.Name,
			Type:        node.Type,
			Criticality: labelFor(score),
			IsHub:       float64(metrics.degree[i]) > hubCutoff,
			Score:       score,
			Metrics: NodeMetrics{
				Degree:                metrics.degree[i],
				PageRank:              metrics.pagerank[i],
				BetweennessCentrality: metrics.betweenness[i],
			},
		}
	}
	return results
}

// TopN returns the n highest-scoring classifications in descending score
// order, ties broken by node ID ascending for determinism.
func TopN(results map[string]*CriticalityResult, n int) []*CriticalityResult {
	ranked := make([]*CriticalityResult, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, r)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].NodeID < ranked[j].NodeID
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func labelFor(score float64) Criticality {
	switch {
	case score >= criticalThreshold:
		return CriticalityCritical
	case score >= highThreshold:
		return CriticalityHigh
	case score >= mediumThreshold:
		return CriticalityMedium
	default:
		return CriticalityLow
	}
}

// hubDegreeCutoff returns mean + 2*stddev of the degree distribution
// (population stddev).
func hubDegreeCutoff(degrees []int) float64 {
	n := float64(len(degrees))
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range degrees {
		sum += float64(d)
	}
	mean := sum / n

	variance := 0.0
	for _, d := range degrees {
		diff := float64(d) - mean
		variance += diff * diff
	}
	variance /= n

	return mean + 2*math.Sqrt(variance)
}

// minMaxNormalize maps values onto [0,1]. A constant slice maps to zeros.
func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(values))
	if max == min {
		return out
	}
	span := max - min
	for i, v := range values {
		out[i] = (v - min) / span
	}
	return out
}
