package graph

import (
	"context"
	"testing"
)

func TestBuildView(t *testing.T) {
	source := &fakeSource{
		folders: map[string]bool{"f": true},
		entities: []Entity{
			{ID: "db", Name: "Core DB", Type: "data", SourceType: "inventory", SourceID: "inv-1"},
			{ID: "app", Name: "Billing", Type: "application"},
		},
		rels: []Relationship{
			{SourceID: "app", TargetID: "db", RelationType: "depends_on", Weight: floatPtr(0.9)},
		},
	}
	g, err := testBuilder(source).Build(context.Background(), "f")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	view := BuildView(g)

	if len(view.Nodes) != 2 {
		t.Fatalf("Expected 2 view nodes, got %d", len(view.Nodes))
	}
	if view.Nodes[0].Icon == "" || view.Nodes[0].Color == "" {
		t.Error("Expected styled node with icon and color")
	}
	if view.Nodes[0].SourceType != "inventory" || view.Nodes[0].SourceID != "inv-1" {
		t.Errorf("Expected source back-reference carried through, got %+v", view.Nodes[0])
	}

	if len(view.Links) != 1 {
		t.Fatalf("Expected 1 link, got %d", len(view.Links))
	}
	link := view.Links[0]
	if link.Source != "app" || link.Target != "db" || link.Weight != 0.9 {
		t.Errorf("Unexpected link: %+v", link)
	}

	if len(view.Categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(view.Categories))
	}
	for _, cat := range view.Categories {
		if cat.Icon == "" || cat.Color == "" {
			t.Errorf("Category %s missing style", cat.Name)
		}
	}
}

func TestTypeStylesCoverAllNodeTypes(t *testing.T) {
	for _, nt := range AllNodeTypes {
		if _, ok := typeStyles[nt]; !ok {
			t.Errorf("Missing style for node type %s", nt)
		}
	}
}
