// secgraph-demo runs the full analysis pipeline against a small in-memory
// organization and prints the results as JSON. Useful for eyeballing the
// engine without a database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aegisops/secgraph/pkg/analysis"
	"github.com/aegisops/secgraph/pkg/graph"
	"github.com/aegisops/secgraph/pkg/inventory"
	"github.com/aegisops/secgraph/pkg/logging"
)

const folder = "demo-org"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "secgraph-demo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	source := buildDemoOrg()
	logger := logging.NewJSONLogger(os.Stderr, logging.WarnLevel)

	ctx := context.Background()
	g, err := graph.NewBuilder(source, logger).Build(ctx, folder)
	if err != nil {
		return err
	}

	metrics, err := analysis.ComputeMetrics(ctx, g, analysis.DefaultMetricsOptions())
	if err != nil {
		return err
	}
	classified := analysis.Classify(g, metrics)
	top := analysis.TopN(classified, 5)

	blast, err := analysis.Propagate(g, "core-db", analysis.BlastRadiusOptions{
		MaxHops:   3,
		Threshold: 0.01,
	}, classified)
	if err != nil {
		return err
	}

	contributions := make([]analysis.Contribution, 0, len(blast.AffectedNodes))
	for _, a := range blast.AffectedNodes {
		contributions = append(contributions, analysis.Contribution{ID: a.NodeID, Value: a.ImpactScore})
	}
	var concentration *analysis.ConcentrationResult
	if len(contributions) > 0 {
		concentration, err = analysis.AnalyzeConcentration(contributions)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"critical_nodes": top,
		"blast_radius":   blast,
		"concentration":  concentration,
	})
}

// buildDemoOrg models a small company: a core database feeding two
// applications behind a load balancer, a shared identity system, and a
// firewall control mitigating an exposed vulnerability.
func buildDemoOrg() *inventory.MemorySource {
	source := inventory.NewMemorySource()
	source.AddFolder(folder)

	add := func(id, name, kind string, weight float64) {
		source.AddEntity(folder, graph.Entity{ID: id, Name: name, Type: kind, IntrinsicWeight: weight})
	}
	link := func(src, dst, relation string, weight float64) {
		source.AddRelationship(folder, graph.Relationship{
			SourceID: src, TargetID: dst, RelationType: relation, Weight: &weight,
		})
	}

	add("core-db", "Core Database", "data", 5)
	add("app-billing", "Billing App", "application", 3)
	add("app-portal", "Customer Portal", "application", 3)
	add("lb-edge", "Edge Load Balancer", "network", 2)
	add("idp", "Identity Provider", "system", 4)
	add("fw-main", "Main Firewall", "control", 1)
	add("cve-portal", "Portal RCE", "vulnerability", 2)
	add("ops-admin", "Ops Admin", "user", 1)

	link("core-db", "app-billing", "depends_on", 0.9)
	link("core-db", "app-portal", "depends_on", 0.9)
	link("app-billing", "lb-edge", "depends_on", 0.8)
	link("app-portal", "lb-edge", "depends_on", 0.8)
	link("idp", "app-billing", "authenticates", 0.7)
	link("idp", "app-portal", "authenticates", 0.7)
	link("cve-portal", "app-portal", "threatens", 0.6)
	link("fw-main", "cve-portal", "mitigates", 0.5)
	link("ops-admin", "idp", "administers", 0.4)

	return source
}
