package inventory

import (
	"context"
	"testing"

	"github.com/aegisops/secgraph/pkg/graph"
)

func TestMemorySource_FolderLifecycle(t *testing.T) {
	source := NewMemorySource()
	ctx := context.Background()

	exists, err := source.FolderExists(ctx, "f")
	if err != nil {
		t.Fatalf("FolderExists failed: %v", err)
	}
	if exists {
		t.Error("Folder must not exist before AddFolder")
	}

	source.AddFolder("f")

	exists, err = source.FolderExists(ctx, "f")
	if err != nil {
		t.Fatalf("FolderExists failed: %v", err)
	}
	if !exists {
		t.Error("Folder must exist after AddFolder")
	}
}

func TestMemorySource_AddEntityGeneratesID(t *testing.T) {
	source := NewMemorySource()
	source.AddFolder("f")

	id := source.AddEntity("f", graph.Entity{Name: "unnamed", Type: "asset"})
	if id == "" {
		t.Fatal("Expected generated entity ID")
	}

	entities, err := source.Entities(context.Background(), "f")
	if err != nil {
		t.Fatalf("Entities failed: %v", err)
	}
	if len(entities) != 1 || entities[0].ID != id {
		t.Errorf("Expected stored entity with ID %s, got %+v", id, entities)
	}
}

func TestMemorySource_AddEntityRegistersFolder(t *testing.T) {
	source := NewMemorySource()

	source.AddEntity("implicit", graph.Entity{ID: "a", Name: "a", Type: "asset"})

	exists, err := source.FolderExists(context.Background(), "implicit")
	if err != nil {
		t.Fatalf("FolderExists failed: %v", err)
	}
	if !exists {
		t.Error("Adding an entity must register its folder")
	}
}

func TestMemorySource_InsertionOrderPreserved(t *testing.T) {
	source := NewMemorySource()
	source.AddFolder("f")
	for _, id := range []string{"c", "a", "b"} {
		source.AddEntity("f", graph.Entity{ID: id, Name: id, Type: "asset"})
	}
	source.AddRelationship("f", graph.Relationship{SourceID: "c", TargetID: "a", RelationType: "r1"})
	source.AddRelationship("f", graph.Relationship{SourceID: "a", TargetID: "b", RelationType: "r2"})

	entities, _ := source.Entities(context.Background(), "f")
	if entities[0].ID != "c" || entities[1].ID != "a" || entities[2].ID != "b" {
		t.Errorf("Entity order changed: %+v", entities)
	}

	rels, _ := source.Relationships(context.Background(), "f")
	if rels[0].RelationType != "r1" || rels[1].RelationType != "r2" {
		t.Errorf("Relationship order changed: %+v", rels)
	}
}

func TestMemorySource_FoldersAreIsolated(t *testing.T) {
	source := NewMemorySource()
	source.AddFolder("f1")
	source.AddFolder("f2")
	source.AddEntity("f1", graph.Entity{ID: "a", Name: "a", Type: "asset"})

	entities, err := source.Entities(context.Background(), "f2")
	if err != nil {
		t.Fatalf("Entities failed: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("Expected no leakage between folders, got %+v", entities)
	}
}
