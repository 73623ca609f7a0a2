package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aegisops/secgraph/pkg/analysis"
	"github.com/aegisops/secgraph/pkg/graph"
	"github.com/aegisops/secgraph/pkg/logging"
	"github.com/aegisops/secgraph/pkg/validation"
)

// Propagation defaults for the per-node blast_radius_score annotation on
// critical-nodes responses. Paths whose impact decays below the threshold
// contribute nothing to the score anyway, so pruning them keeps the
// annotation cheap.
const (
	annotationMaxHops   = analysis.DefaultMaxHops
	annotationThreshold = 0.05
)

const pagerankWarning = "pagerank did not converge within the iteration cap; returning best-effort ranks"

// buildGraph assembles the folder graph and records build metrics.
func (s *Server) buildGraph(ctx context.Context, folderID string) (*graph.Graph, error) {
	start := time.Now()
	g, err := s.builder.Build(ctx, folderID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordGraphBuild(g, time.Since(start))
	return g, nil
}

// computeMetrics runs the centrality engine and records stage metrics.
func (s *Server) computeMetrics(ctx context.Context, g *graph.Graph) (*analysis.MetricsResult, []string, error) {
	opts := analysis.DefaultMetricsOptions()
	opts.Workers = s.opts.Workers

	start := time.Now()
	result, err := analysis.ComputeMetrics(ctx, g, opts)
	s.metrics.RecordAnalysis("centrality", time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	if !result.PageRankConverged {
		warnings = append(warnings, pagerankWarning)
		s.metrics.RecordPageRankNonConvergence()
	}
	return result, warnings, nil
}

func (s *Server) handleCriticalNodes(w http.ResponseWriter, r *http.Request) {
	params := validation.CriticalNodesParams{
		FolderID: r.PathValue("folder_id"),
		TopN:     validation.DefaultTopN,
	}
	query := r.URL.Query()
	if v := query.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "top_n must be an integer")
			return
		}
		params.TopN = n
	}
	if v := query.Get("include_blast_radius"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "include_blast_radius must be a boolean")
			return
		}
		params.IncludeBlastRadius = include
	}
	if err := validation.ValidateCriticalNodesParams(&params); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalysisTimeout)
	defer cancel()

	timer := logging.StartTimer(s.logger, "critical nodes computed",
		logging.FolderID(params.FolderID),
		logging.Int("top_n", params.TopN))

	g, err := s.buildGraph(ctx, params.FolderID)
	if err != nil {
		s.respondAnalysisError(w, "critical-nodes analysis", err)
		return
	}

	metricsResult, warnings, err := s.computeMetrics(ctx, g)
	if err != nil {
		s.respondAnalysisError(w, "critical-nodes analysis", err)
		return
	}

	classified := analysis.Classify(g, metricsResult)
	top := analysis.TopN(classified, params.TopN)

	if params.IncludeBlastRadius {
		blastOpts := analysis.BlastRadiusOptions{
			MaxHops:   annotationMaxHops,
			Threshold: annotationThreshold,
			Decay:     s.opts.DecayFactor,
		}
		for _, node := range top {
			blast, blastErr := analysis.Propagate(g, node.NodeID, blastOpts, classified)
			if blastErr != nil {
				s.respondAnalysisError(w, "critical-nodes analysis", blastErr)
				return
			}
			node.Risk = &analysis.RiskInfo{BlastRadiusScore: blast.RiskScore}
		}
	}

	timer.End()
	s.respondJSON(w, http.StatusOK, CriticalNodesResponse{
		CriticalNodes: top,
		TotalNodes:    g.NodeCount(),
		Warnings:      warnings,
	})
}

func (s *Server) handleBlastRadius(w http.ResponseWriter, r *http.Request) {
	var req validation.BlastRadiusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateBlastRadiusRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalysisTimeout)
	defer cancel()

	timer := logging.StartTimer(s.logger, "blast radius computed",
		logging.FolderID(req.FolderID),
		logging.NodeID(req.SourceNodeID),
		logging.Hops(req.MaxHops))

	g, err := s.buildGraph(ctx, req.FolderID)
	if err != nil {
		s.respondAnalysisError(w, "blast-radius analysis", err)
		return
	}

	metricsResult, warnings, err := s.computeMetrics(ctx, g)
	if err != nil {
		s.respondAnalysisError(w, "blast-radius analysis", err)
		return
	}
	classified := analysis.Classify(g, metricsResult)

	opts := analysis.BlastRadiusOptions{
		MaxHops:   req.MaxHops,
		Threshold: req.PropagationThreshold,
		Decay:     s.opts.DecayFactor,
	}
	if req.DecayFactor != nil {
		opts.Decay = *req.DecayFactor
	}

	start := time.Now()
	result, err := analysis.Propagate(g, req.SourceNodeID, opts, classified)
	s.metrics.RecordAnalysis("blast_radius", time.Since(start), err)
	if err != nil {
		s.respondAnalysisError(w, "blast-radius analysis", err)
		return
	}
	s.metrics.RecordBlastRadius(result.TotalAffected)

	timer.End()
	s.respondJSON(w, http.StatusOK, BlastRadiusResponse{
		BlastRadiusResult: result,
		Warnings:          warnings,
	})
}

func (s *Server) handleConcentration(w http.ResponseWriter, r *http.Request) {
	var req validation.ConcentrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateConcentrationRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contributions := make([]analysis.Contribution, len(req.Contributions))
	for i, c := range req.Contributions {
		contributions[i] = analysis.Contribution{ID: c.ID, Value: c.Value}
	}

	start := time.Now()
	result, err := analysis.AnalyzeConcentration(contributions)
	s.metrics.RecordAnalysis("concentration", time.Since(start), err)
	if err != nil {
		s.respondAnalysisError(w, "concentration analysis", err)
		return
	}

	s.respondJSON(w, http.StatusOK, ConcentrationResponse{
		ConcentrationResult: result,
		Recommendations:     analysis.ConcentrationRecommendations(result),
	})
}

// handleGraphView serves the raw {nodes, links, categories} payload for the
// UI's generic graph viewer. Only the builder runs; no analytics.
func (s *Server) handleGraphView(w http.ResponseWriter, r *http.Request) {
	folderID := r.PathValue("folder_id")
	if folderID == "" {
		s.respondError(w, http.StatusBadRequest, "folder_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalysisTimeout)
	defer cancel()

	g, err := s.buildGraph(ctx, folderID)
	if err != nil {
		s.respondAnalysisError(w, "graph view", err)
		return
	}

	s.respondJSON(w, http.StatusOK, graph.BuildView(g))
}
