package analysis

import (
	"math"

	"github.com/aegisops/secgraph/pkg/graph"
)

// PageRankOptions configures the PageRank power iteration.
type PageRankOptions struct {
	DampingFactor float64 // usually 0.85
	MaxIterations int
	Tolerance     float64 // L1 convergence threshold
}

// DefaultPageRankOptions returns the standard configuration.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

type pageRankResult struct {
	scores     []float64
	iterations int
	converged  bool
}

// pageRank runs the classic power iteration over the directed graph.
//
// Rank flows along outgoing edges proportionally to accumulated edge weight
// (with uniform unit weights this is the textbook 1/outdegree split).
// Dangling nodes distribute their rank uniformly to all nodes, preserving
// the sum-to-1 invariant. Failure to converge within the iteration cap is
// not an error: the last ranks are returned with converged=false.
func pageRank(g *graph.Graph, opts PageRankOptions) pageRankResult {
	n := g.NodeCount()
	if n == 0 {
		return pageRankResult{converged: true}
	}

	if opts.DampingFactor <= 0 || opts.DampingFactor >= 1 {
		opts.DampingFactor = 0.85
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 100
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-6
	}

	totalOut := make([]float64, n)
	for u := 0; u < n; u++ {
		for _, w := range g.OutWeights(u) {
			totalOut[u] += w
		}
	}

	scores := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range scores {
		scores[i] = initial
	}

	newScores := make([]float64, n)
	base := (1.0 - opts.DampingFactor) / float64(n)
	converged := false
	iterations := 0

	for iterations < opts.MaxIterations {
		iterations++

		danglingSum := 0.0
		for u := 0; u < n; u++ {
			if totalOut[u] == 0 {
				danglingSum += scores[u]
			}
		}

		for i := range newScores {
			newScores[i] = base + opts.DampingFactor*danglingSum/float64(n)
		}
		for u := 0; u < n; u++ {
			if totalOut[u] == 0 {
				continue
			}
			share := opts.DampingFactor * scores[u] / totalOut[u]
			for v, w := range g.OutWeights(u) {
				newScores[v] += share * w
			}
		}

		// L1 change across all ranks
		change := 0.0
		for i := range scores {
			change += math.Abs(newScores[i] - scores[i])
		}

		scores, newScores = newScores, scores

		if change < opts.Tolerance {
			converged = true
			break
		}
	}

	// Guard the invariant against accumulated float drift
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if sum > 0 {
		for i := range scores {
			scores[i] /= sum
		}
	}

	return pageRankResult{
		scores:     scores,
		iterations: iterations,
		converged:  converged,
	}
}
