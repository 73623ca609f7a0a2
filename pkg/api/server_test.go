package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisops/secgraph/pkg/graph"
	"github.com/aegisops/secgraph/pkg/health"
	"github.com/aegisops/secgraph/pkg/inventory"
	"github.com/aegisops/secgraph/pkg/logging"
	"github.com/aegisops/secgraph/pkg/metrics"
)

const testFolder = "folder-1"

// newTestServer wires a server over an in-memory source seeded with a small
// organization: a database everything depends on, two apps, and a user.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	source := inventory.NewMemorySource()
	source.AddFolder(testFolder)
	source.AddFolder("empty-folder")

	entities := []graph.Entity{
		{ID: "db", Name: "Core Database", Type: "data", IntrinsicWeight: 1.0},
		{ID: "app1", Name: "Billing App", Type: "application"},
		{ID: "app2", Name: "Reporting App", Type: "application"},
		{ID: "user", Name: "Analyst", Type: "user"},
	}
	for _, e := range entities {
		source.AddEntity(testFolder, e)
	}
	rels := []graph.Relationship{
		{SourceID: "app1", TargetID: "db", RelationType: "depends_on"},
		{SourceID: "app2", TargetID: "db", RelationType: "depends_on"},
		{SourceID: "db", TargetID: "app1", RelationType: "threatens"},
		{SourceID: "db", TargetID: "app2", RelationType: "threatens"},
		{SourceID: "user", TargetID: "app1", RelationType: "accesses"},
	}
	for _, r := range rels {
		source.AddRelationship(testFolder, r)
	}

	builder := graph.NewBuilder(source, logging.NewNopLogger())
	server := NewServer(builder, logging.NewNopLogger(), metrics.NewRegistry(), health.NewChecker(), DefaultOptions())

	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestCriticalNodesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var resp CriticalNodesResponse
	status := getJSON(t, ts.URL+"/security-graph/folder/"+testFolder+"/critical-nodes/", &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, resp.TotalNodes)
	require.NotEmpty(t, resp.CriticalNodes)
	assert.Equal(t, "db", resp.CriticalNodes[0].NodeID, "database should rank first")

	// Descending by score
	for i := 1; i < len(resp.CriticalNodes); i++ {
		assert.GreaterOrEqual(t, resp.CriticalNodes[i-1].Score, resp.CriticalNodes[i].Score)
	}
}

func TestCriticalNodesEndpoint_TopN(t *testing.T) {
	ts := newTestServer(t)

	var resp CriticalNodesResponse
	status := getJSON(t, ts.URL+"/security-graph/folder/"+testFolder+"/critical-nodes/?top_n=2", &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp.CriticalNodes, 2)
	assert.Equal(t, 4, resp.TotalNodes)
}

func TestCriticalNodesEndpoint_IncludeBlastRadius(t *testing.T) {
	ts := newTestServer(t)

	var resp CriticalNodesResponse
	status := getJSON(t, ts.URL+"/security-graph/folder/"+testFolder+"/critical-nodes/?include_blast_radius=true", &resp)

	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, resp.CriticalNodes)
	for _, node := range resp.CriticalNodes {
		require.NotNil(t, node.Risk, "blast radius annotation missing for %s", node.NodeID)
	}
	assert.Greater(t, resp.CriticalNodes[0].Risk.BlastRadiusScore, 0.0)
}

func TestCriticalNodesEndpoint_EmptyFolder(t *testing.T) {
	ts := newTestServer(t)

	var resp CriticalNodesResponse
	status := getJSON(t, ts.URL+"/security-graph/folder/empty-folder/critical-nodes/", &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, resp.TotalNodes)
	assert.Empty(t, resp.CriticalNodes)
}

func TestCriticalNodesEndpoint_UnknownFolder(t *testing.T) {
	ts := newTestServer(t)

	var resp ErrorResponse
	status := getJSON(t, ts.URL+"/security-graph/folder/no-such-folder/critical-nodes/", &resp)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCriticalNodesEndpoint_BadParams(t *testing.T) {
	ts := newTestServer(t)

	cases := []string{
		"?top_n=abc",
		"?top_n=0",
		"?top_n=-5",
		"?top_n=100000",
		"?include_blast_radius=banana",
	}
	for _, qs := range cases {
		var resp ErrorResponse
		status := getJSON(t, ts.URL+"/security-graph/folder/"+testFolder+"/critical-nodes/"+qs, &resp)
		assert.Equal(t, http.StatusBadRequest, status, "query %s", qs)
	}
}

func TestBlastRadiusEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var resp BlastRadiusResponse
	status := postJSON(t, ts.URL+"/security-graph/blast-radius/", map[string]any{
		"folder_id":      testFolder,
		"source_node_id": "db",
		"max_hops":       3,
	}, &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "db", resp.SourceNodeID)
	assert.Equal(t, 2, resp.TotalAffected, "db threatens both apps")
	assert.Equal(t, 2, resp.DirectImpact)
	assert.Greater(t, resp.RiskScore, 0.0)

	sum := 0
	for _, count := range resp.ImpactByHop {
		sum += count
	}
	assert.Equal(t, resp.TotalAffected, sum)
}

func TestBlastRadiusEndpoint_UnknownSource(t *testing.T) {
	ts := newTestServer(t)

	var resp ErrorResponse
	status := postJSON(t, ts.URL+"/security-graph/blast-radius/", map[string]any{
		"folder_id":      testFolder,
		"source_node_id": "ghost",
		"max_hops":       3,
	}, &resp)

	assert.Equal(t, http.StatusNotFound, status)
}

func TestBlastRadiusEndpoint_Validation(t *testing.T) {
	ts := newTestServer(t)

	cases := []map[string]any{
		{"source_node_id": "db", "max_hops": 3},    // missing folder
		{"folder_id": testFolder, "max_hops": 3},   // missing source
		{"folder_id": testFolder, "source_node_id": "db", "max_hops": -1},
		{"folder_id": testFolder, "source_node_id": "db", "max_hops": 3, "propagation_threshold": 2.0},
		{"folder_id": testFolder, "source_node_id": "db", "max_hops": 3, "decay_factor": 1.5},
	}
	for _, body := range cases {
		var resp ErrorResponse
		status := postJSON(t, ts.URL+"/security-graph/blast-radius/", body, &resp)
		assert.Equal(t, http.StatusBadRequest, status, "body %v", body)
	}
}

func TestBlastRadiusEndpoint_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/security-graph/blast-radius/", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConcentrationEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var resp ConcentrationResponse
	status := postJSON(t, ts.URL+"/security-graph/concentration/", map[string]any{
		"contributions": []map[string]any{
			{"id": "s1", "value": 90},
			{"id": "s2", "value": 5},
			{"id": "s3", "value": 5},
		},
	}, &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Greater(t, resp.HerfindahlIndex, 0.25)
	assert.NotEmpty(t, resp.Recommendations, "high concentration should yield a recommendation")
}

func TestConcentrationEndpoint_Degenerate(t *testing.T) {
	ts := newTestServer(t)

	var resp ErrorResponse
	status := postJSON(t, ts.URL+"/security-graph/concentration/", map[string]any{
		"contributions": []map[string]any{
			{"id": "s1", "value": 0},
		},
	}, &resp)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGraphViewEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var view graph.View
	status := getJSON(t, ts.URL+"/security-graph/folder/"+testFolder+"/graph/", &view)

	require.Equal(t, http.StatusOK, status)
	assert.Len(t, view.Nodes, 4)
	assert.Len(t, view.Links, 5)
	assert.NotEmpty(t, view.Categories)
	for _, n := range view.Nodes {
		assert.NotEmpty(t, n.Icon)
		assert.NotEmpty(t, n.Color)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var resp HealthResponse
	status := getJSON(t, ts.URL+"/health", &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Version)
}

func TestHealthEndpoint_Unhealthy(t *testing.T) {
	source := inventory.NewMemorySource()
	builder := graph.NewBuilder(source, logging.NewNopLogger())
	checker := health.NewChecker()
	checker.RegisterCheck("database", health.PingCheck(func(ctx context.Context) error {
		return errors.New("connection refused")
	}))
	server := NewServer(builder, logging.NewNopLogger(), metrics.NewRegistry(), checker, DefaultOptions())
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	var resp HealthResponse
	status := getJSON(t, ts.URL+"/health", &resp)

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", resp.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Generate some traffic first
	var ignored CriticalNodesResponse
	getJSON(t, ts.URL+"/security-graph/folder/"+testFolder+"/critical-nodes/", &ignored)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "trace-me-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-me-123", resp.Header.Get("X-Request-ID"))
}

func TestUnknownRouteReturns404(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/security-graph/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
