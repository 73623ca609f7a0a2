package inventory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/aegisops/secgraph/pkg/graph"
)

// MemorySource is an in-memory EntitySource for tests and demos.
type MemorySource struct {
	mu       sync.RWMutex
	entities map[string][]graph.Entity       // folder -> entities
	rels     map[string][]graph.Relationship // folder -> relationships
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		entities: make(map[string][]graph.Entity),
		rels:     make(map[string][]graph.Relationship),
	}
}

// AddFolder registers a folder, empty until entities are added.
func (s *MemorySource) AddFolder(folderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[folderID]; !ok {
		s.entities[folderID] = nil
	}
}

// AddEntity appends an entity to a folder, generating an ID when absent.
// Returns the entity ID.
func (s *MemorySource) AddEntity(folderID string, e graph.Entity) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.entities[folderID] = append(s.entities[folderID], e)
	return e.ID
}

// AddRelationship appends a relationship to a folder.
func (s *MemorySource) AddRelationship(folderID string, r graph.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rels[folderID] = append(s.rels[folderID], r)
}

// FolderExists reports whether the folder was registered.
func (s *MemorySource) FolderExists(_ context.Context, folderID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entities[folderID]
	return ok, nil
}

// Entities returns the folder's entities in insertion order.
func (s *MemorySource) Entities(_ context.Context, folderID string) ([]graph.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.Entity, len(s.entities[folderID]))
	copy(out, s.entities[folderID])
	return out, nil
}

// Relationships returns the folder's relationships in insertion order.
func (s *MemorySource) Relationships(_ context.Context, folderID string) ([]graph.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.Relationship, len(s.rels[folderID]))
	copy(out, s.rels[folderID])
	return out, nil
}
