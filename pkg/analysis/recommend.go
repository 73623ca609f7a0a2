package analysis

import (
	"fmt"

	"github.com/aegisops/secgraph/pkg/graph"
)

// Recommendation rule thresholds. Rules are evaluated independently; every
// matching message is returned.
const (
	concentrationWarnHHI   = 0.25
	directImpactWarnRatio  = 0.8
	dominantNeighborsShare = 0.5
)

// blastRecommendations applies the threshold rules over a propagation
// result. Rules are not mutually exclusive.
func blastRecommendations(g *graph.Graph, source int, result *BlastRadiusResult) []string {
	var recs []string

	if result.CriticalAssetsAffected > 0 {
		recs = append(recs, fmt.Sprintf(
			"prioritize remediation of %d critical asset(s) inside the blast radius",
			result.CriticalAssetsAffected))
	}

	if result.TotalAffected > 0 {
		ratio := float64(result.DirectImpact) / float64(result.TotalAffected)
		if ratio > directImpactWarnRatio {
			recs = append(recs, "strengthen first-degree isolation controls: most of the impact lands on direct neighbors")
		}
	}

	if dominant, share := dominantFirstHopNeighbor(g, source, result); share > dominantNeighborsShare {
		recs = append(recs, fmt.Sprintf(
			"diversify dependencies: %.0f%% of affected nodes are reached through %s",
			share*100, dominant))
	}

	return recs
}

// dominantFirstHopNeighbor finds the hop-1 neighbor through which the
// largest share of affected nodes is reachable, and that share of
// total_affected. Reachability is measured by a BFS restricted to affected
// nodes and seeded at the neighbor.
func dominantFirstHopNeighbor(g *graph.Graph, source int, result *BlastRadiusResult) (string, float64) {
	if result.TotalAffected == 0 {
		return "", 0
	}

	affected := make(map[int]bool, result.TotalAffected)
	firstHop := make([]int, 0, result.DirectImpact)
	for _, a := range result.AffectedNodes {
		dense, ok := g.DenseID(a.NodeID)
		if !ok {
			continue
		}
		affected[dense] = true
		if a.Hops == 1 {
			firstHop = append(firstHop, dense)
		}
	}

	bestShare := 0.0
	bestID := ""
	for _, seed := range firstHop {
		count := countReachableWithin(g, seed, affected)
		share := float64(count) / float64(result.TotalAffected)
		id := g.Node(seed).ID
		if share > bestShare || (share == bestShare && id < bestID) {
			bestShare = share
			bestID = id
		}
	}
	return bestID, bestShare
}

// countReachableWithin counts nodes of the allowed set reachable from seed
// (seed included) following outgoing edges through allowed nodes only.
func countReachableWithin(g *graph.Graph, seed int, allowed map[int]bool) int {
	visited := map[int]bool{seed: true}
	queue := []int{seed}
	count := 1
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, he := range g.Out(u) {
			if visited[he.To] || !allowed[he.To] {
				continue
			}
			visited[he.To] = true
			count++
			queue = append(queue, he.To)
		}
	}
	return count
}

// ConcentrationRecommendations applies the rule table to concentration
// statistics.
func ConcentrationRecommendations(result *ConcentrationResult) []string {
	var recs []string
	if result.HerfindahlIndex > concentrationWarnHHI {
		recs = append(recs, fmt.Sprintf(
			"risk concentration is high (HHI %.2f): spread exposure across more scenarios or assets",
			result.HerfindahlIndex))
	}
	return recs
}
