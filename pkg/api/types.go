package api

import (
	"time"

	"github.com/aegisops/secgraph/pkg/analysis"
	"github.com/aegisops/secgraph/pkg/health"
)

// ErrorResponse is the error body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Version   string                  `json:"version"`
	Uptime    string                  `json:"uptime"`
	Checks    map[string]health.Check `json:"checks,omitempty"`
}

// CriticalNodesResponse is the critical-nodes endpoint body.
type CriticalNodesResponse struct {
	CriticalNodes []*analysis.CriticalityResult `json:"critical_nodes"`
	TotalNodes    int                           `json:"total_nodes"`
	Warnings      []string                      `json:"warnings,omitempty"`
}

// BlastRadiusResponse wraps a propagation result with any computation
// warnings.
type BlastRadiusResponse struct {
	*analysis.BlastRadiusResult
	Warnings []string `json:"warnings,omitempty"`
}

// ConcentrationResponse wraps concentration statistics with the matching
// recommendations.
type ConcentrationResponse struct {
	*analysis.ConcentrationResult
	Recommendations []string `json:"recommendations"`
}
