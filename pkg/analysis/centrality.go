package analysis

import (
	"context"

	"github.com/aegisops/secgraph/pkg/graph"
	"github.com/aegisops/secgraph/pkg/parallel"
)

// NodeMetrics holds the connectivity metrics for one node.
type NodeMetrics struct {
	// Degree is the count of distinct undirected neighbors. Edge direction
	// is ignored: connectivity here denotes blast potential.
	Degree int `json:"degree"`
	// PageRank sums to 1.0 across the graph (within tolerance).
	PageRank float64 `json:"pagerank"`
	// BetweennessCentrality is normalized to [0,1] by (n-1)(n-2) for n>=3.
	BetweennessCentrality float64 `json:"betweenness_centrality"`
}

// MetricsResult is the output of ComputeMetrics.
type MetricsResult struct {
	ByNode map[string]NodeMetrics

	// PageRankConverged is false when the iteration cap was hit before the
	// L1 change dropped below tolerance. The ranks are still the best
	// available and the caller surfaces a warning instead of an error.
	PageRankConverged  bool
	PageRankIterations int

	// dense-indexed copies kept for downstream stages that work on the
	// arena directly
	degree      []int
	pagerank    []float64
	betweenness []float64
}

// MetricsOptions configures metric computation.
type MetricsOptions struct {
	PageRank PageRankOptions
	// Workers bounds the parallel per-source Brandes BFS fan-out.
	// <= 0 means one worker per CPU.
	Workers int
}

// DefaultMetricsOptions returns the standard configuration.
func DefaultMetricsOptions() MetricsOptions {
	return MetricsOptions{
		PageRank: DefaultPageRankOptions(),
	}
}

// ComputeMetrics computes degree, PageRank and betweenness centrality for
// every node. It is a pure function of the graph: no state carries between
// invocations. The context is checked between betweenness sources so a
// timed-out request releases its workers promptly.
func ComputeMetrics(ctx context.Context, g *graph.Graph, opts MetricsOptions) (*MetricsResult, error) {
	n := g.NodeCount()

	result := &MetricsResult{
		ByNode:            make(map[string]NodeMetrics, n),
		PageRankConverged: true,
	}
	if n == 0 {
		return result, nil
	}

	result.degree = make([]int, n)
	for i := 0; i < n; i++ {
		result.degree[i] = g.Degree(i)
	}

	pr := pageRank(g, opts.PageRank)
	result.pagerank = pr.scores
	result.PageRankConverged = pr.converged
	result.PageRankIterations = pr.iterations

	betweenness, err := betweennessCentrality(ctx, g, opts.Workers)
	if err != nil {
		return nil, err
	}
	result.betweenness = betweenness

	for i := 0; i < n; i++ {
		result.ByNode[g.Node(i).ID] = NodeMetrics{
			Degree:                result.degree[i],
			PageRank:              result.pagerank[i],
			BetweennessCentrality: result.betweenness[i],
		}
	}
	return result, nil
}

// betweennessCentrality runs Brandes' algorithm over the undirected
// adjacency, one unweighted BFS per source. Sources are sharded statically
// across workers and the per-worker accumulators are summed in worker
// order, so the result is deterministic regardless of scheduling.
// Normalization divides by (n-1)(n-2); for n<3 all values are 0.
func betweennessCentrality(ctx context.Context, g *graph.Graph, workers int) ([]float64, error) {
	n := g.NodeCount()
	scores := make([]float64, n)
	if n < 3 {
		return scores, nil
	}

	pool := parallel.NewWorkerPool(workers)
	workerCount := pool.Workers()
	if workerCount > n {
		workerCount = n
	}

	partials := make([][]float64, workerCount)
	errs := make([]error, workerCount)
	done := make(chan int, workerCount)

	for w := 0; w < workerCount; w++ {
		w := w
		pool.Submit(func() {
			acc := make([]float64, n)
			for source := w; source < n; source += workerCount {
				select {
				case <-ctx.Done():
					errs[w] = ctx.Err()
					partials[w] = acc
					done <- w
					return
				default:
				}
				brandesFromSource(g, source, acc)
			}
			partials[w] = acc
			done <- w
		})
	}

	for i := 0; i < workerCount; i++ {
		<-done
	}
	pool.Close()

	for w := 0; w < workerCount; w++ {
		if errs[w] != nil {
			return nil, errs[w]
		}
	}
	for w := 0; w < workerCount; w++ {
		for i, v := range partials[w] {
			scores[i] += v
		}
	}

	norm := 1.0 / float64((n-1)*(n-2))
	for i := range scores {
		scores[i] *= norm
	}
	return scores, nil
}

// brandesFromSource runs one single-source shortest-path pass and adds the
// dependency contributions into acc.
func brandesFromSource(g *graph.Graph, source int, acc []float64) {
	n := g.NodeCount()

	stack := make([]int, 0, n)
	predecessors := make([][]int, n)
	sigma := make([]float64, n)
	distance := make([]int, n)
	for i := range distance {
		distance[i] = -1
	}

	sigma[source] = 1.0
	distance[source] = 0

	queue := make([]int, 0, n)
	queue = append(queue, source)

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)

		for _, w := range g.Neighbors(v) {
			if distance[w] < 0 {
				queue = append(queue, w)
				distance[w] = distance[v] + 1
			}
			if distance[w] == distance[v]+1 {
				sigma[w] += sigma[v]
				predecessors[w] = append(predecessors[w], v)
			}
		}
	}

	// Back-propagation of dependency scores
	delta := make([]float64, n)
	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, pred := range predecessors[w] {
			delta[pred] += (sigma[pred] / sigma[w]) * (1.0 + delta[w])
		}
		if w != source {
			acc[w] += delta[w]
		}
	}
}
