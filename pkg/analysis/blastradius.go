package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/aegisops/secgraph/pkg/graph"
)

// Blast-radius defaults and risk score constants. The risk score is
// min(100, affectedPoints*log2(total+1) + criticalPoints*criticals +
// directPoints if anything was hit directly); the constants were picked to
// keep typical graphs in a 0-100 band.
const (
	DefaultDecayFactor = 0.7
	DefaultMaxHops     = 3

	riskAffectedPoints = 10.0
	riskCriticalPoints = 5.0
	riskDirectPoints   = 20.0
)

// BlastRadiusOptions configures a propagation run.
type BlastRadiusOptions struct {
	MaxHops int
	// Threshold prunes any propagation path whose candidate impact falls
	// below it. Must be in [0,1].
	Threshold float64
	// Decay is the fixed per-hop attenuation, in (0,1]. Zero means
	// DefaultDecayFactor.
	Decay float64
}

// Validate checks the option ranges.
func (o BlastRadiusOptions) Validate() error {
	if o.MaxHops < 0 {
		return invalidParam("max_hops", "must be >= 0, got %d", o.MaxHops)
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return invalidParam("propagation_threshold", "must be in [0,1], got %g", o.Threshold)
	}
	if o.Decay < 0 || o.Decay > 1 {
		return invalidParam("decay_factor", "must be in (0,1], got %g", o.Decay)
	}
	return nil
}

// AffectedNode is one node reached by the propagation, with the hop it was
// first reached at and the highest impact that arrived there.
type AffectedNode struct {
	NodeID      string         `json:"node_id"`
	Name        string         `json:"name"`
	Type        graph.NodeType `json:"type"`
	Hops        int            `json:"hops"`
	Criticality Criticality    `json:"criticality"`
	ImpactScore float64        `json:"impact_score"`
}

// BlastRadiusResult is the outcome of a propagation simulation.
type BlastRadiusResult struct {
	SourceNodeID           string                 `json:"source_node_id"`
	TotalAffected          int                    `json:"total_affected"`
	DirectImpact           int                    `json:"direct_impact"`
	IndirectImpact         int                    `json:"indirect_impact"`
	CriticalAssetsAffected int                    `json:"critical_assets_affected"`
	RiskScore              float64                `json:"risk_score"`
	ImpactByType           map[graph.NodeType]int `json:"impact_by_type"`
	ImpactByHop            map[int]int            `json:"impact_by_hop"`
	AffectedNodes          []AffectedNode         `json:"affected_nodes"`
	Recommendations        []string               `json:"recommendations"`
}

// Propagate simulates the spread of compromise impact outward from a source
// node.
//
// The traversal is hop-synchronous breadth-first: candidates at hop h derive
// only from the hop h-1 frontier. At hop 0 the source carries its intrinsic
// weight (1.0 if unset). For an edge u->v the candidate impact is
// impact(u) * edge_weight * decay; candidates below the threshold are
// pruned. A node already affected keeps its first hop and takes the max of
// competing impacts; it is not re-enqueued. The source itself is never
// counted as affected.
//
// criticality may be nil; it supplies precomputed labels for
// critical_assets_affected and per-node annotations.
func Propagate(g *graph.Graph, sourceNodeID string, opts BlastRadiusOptions, criticality map[string]*CriticalityResult) (*BlastRadiusResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	decay := opts.Decay
	if decay == 0 {
		decay = DefaultDecayFactor
	}

	source, ok := g.DenseID(sourceNodeID)
	if !ok {
		return nil, fmt.Errorf("source node %s: %w", sourceNodeID, graph.ErrNodeNotFound)
	}

	sourceImpact := g.Node(source).IntrinsicWeight
	if sourceImpact == 0 {
		sourceImpact = 1.0
	}

	n := g.NodeCount()
	impact := make([]float64, n)
	hopOf := make([]int, n)
	for i := range hopOf {
		hopOf[i] = -1
	}
	impact[source] = sourceImpact
	hopOf[source] = 0

	frontier := []int{source}
	for hop := 1; hop <= opts.MaxHops && len(frontier) > 0; hop++ {
		var next []int
		for _, u := range frontier {
			for _, he := range g.Out(u) {
				candidate := impact[u] * he.Weight * decay
				if candidate < opts.Threshold || candidate == 0 {
					continue
				}
				v := he.To
				if hopOf[v] < 0 {
					hopOf[v] = hop
					impact[v] = candidate
					next = append(next, v)
				} else if candidate > impact[v] {
					impact[v] = candidate
				}
			}
		}
		frontier = next
	}

	result := &BlastRadiusResult{
		SourceNodeID: sourceNodeID,
		ImpactByType: make(map[graph.NodeType]int),
		ImpactByHop:  make(map[int]int),
	}

	for i := 0; i < n; i++ {
		if i == source || hopOf[i] < 0 {
			continue
		}
		node := g.Node(i)
		affected := AffectedNode{
			NodeID:      node.ID,
			Name:        node.Name,
			Type:        node.Type,
			Hops:        hopOf[i],
			ImpactScore: impact[i],
		}
		if criticality != nil {
			if c, found := criticality[node.ID]; found {
				affected.Criticality = c.Criticality
				if c.Criticality == CriticalityCritical {
					result.CriticalAssetsAffected++
				}
			}
		}
		result.AffectedNodes = append(result.AffectedNodes, affected)
		result.TotalAffected++
		result.ImpactByType[node.Type]++
		result.ImpactByHop[hopOf[i]]++
		if hopOf[i] == 1 {
			result.DirectImpact++
		} else {
			result.IndirectImpact++
		}
	}

	sort.Slice(result.AffectedNodes, func(i, j int) bool {
		a, b := result.AffectedNodes[i], result.AffectedNodes[j]
		if a.ImpactScore != b.ImpactScore {
			return a.ImpactScore > b.ImpactScore
		}
		return a.NodeID < b.NodeID
	})

	result.RiskScore = riskScore(result.TotalAffected, result.CriticalAssetsAffected, result.DirectImpact)
	result.Recommendations = blastRecommendations(g, source, result)

	return result, nil
}

func riskScore(totalAffected, criticalAffected, directImpact int) float64 {
	score := riskAffectedPoints * math.Log2(float64(totalAffected)+1)
	score += riskCriticalPoints * float64(criticalAffected)
	if directImpact > 0 {
		score += riskDirectPoints
	}
	return math.Min(100, score)
}
