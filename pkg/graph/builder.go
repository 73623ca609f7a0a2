package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/aegisops/secgraph/pkg/logging"
)

// Entity is a raw node record as supplied by an entity source.
type Entity struct {
	ID              string
	Name            string
	Type            string
	IntrinsicWeight float64
	SourceType      string
	SourceID        string
}

// Relationship is a raw edge record as supplied by an entity source.
// Weight is optional; nil means the default propagation strength of 1.0.
type Relationship struct {
	SourceID     string
	TargetID     string
	RelationType string
	Weight       *float64
}

// EntitySource supplies the raw entity and relationship data for a folder.
// The persistence layer behind it is a black box; implementations live in
// pkg/inventory.
type EntitySource interface {
	FolderExists(ctx context.Context, folderID string) (bool, error)
	Entities(ctx context.Context, folderID string) ([]Entity, error)
	Relationships(ctx context.Context, folderID string) ([]Relationship, error)
}

// Builder assembles Graphs from an EntitySource. A Graph is built fresh per
// analysis request and discarded afterwards; the Builder itself holds no
// graph state.
type Builder struct {
	source EntitySource
	logger logging.Logger
}

// NewBuilder creates a Builder over the given source.
func NewBuilder(source EntitySource, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{source: source, logger: logger}
}

// Build assembles the security graph for a folder.
//
// A missing folder fails with ErrFolderNotFound. A folder with no entities
// is not an error: the result is a valid graph with zero nodes. Duplicate
// node IDs are deduplicated (first record wins). Edges referencing unknown
// node IDs are dropped with a logged warning rather than failing the build.
func (b *Builder) Build(ctx context.Context, folderID string) (*Graph, error) {
	exists, err := b.source.FolderExists(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("checking folder %s: %w", folderID, err)
	}
	if !exists {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrFolderNotFound)
	}

	entities, err := b.source.Entities(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("loading entities for folder %s: %w", folderID, err)
	}

	g := &Graph{
		folderID: folderID,
		index:    make(map[string]int, len(entities)),
	}

	for _, ent := range entities {
		if _, dup := g.index[ent.ID]; dup {
			b.logger.Warn("duplicate node id, keeping first",
				logging.FolderID(folderID), logging.NodeID(ent.ID))
			continue
		}
		nodeType, typeErr := ParseNodeType(ent.Type)
		if typeErr != nil {
			b.logger.Warn("skipping entity with unknown type",
				logging.FolderID(folderID), logging.NodeID(ent.ID),
				logging.String("type", ent.Type))
			continue
		}
		weight := ent.IntrinsicWeight
		if weight < 0 {
			weight = 0
		}
		g.index[ent.ID] = len(g.nodes)
		g.nodes = append(g.nodes, Node{
			ID:              ent.ID,
			Name:            ent.Name,
			Type:            nodeType,
			FolderID:        folderID,
			IntrinsicWeight: weight,
			SourceType:      ent.SourceType,
			SourceID:        ent.SourceID,
		})
	}

	n := len(g.nodes)
	g.out = make([][]HalfEdge, n)
	g.in = make([][]HalfEdge, n)
	g.outWeight = make([]map[int]float64, n)
	neighborSets := make([]map[int]struct{}, n)

	if n > 0 {
		rels, relErr := b.source.Relationships(ctx, folderID)
		if relErr != nil {
			return nil, fmt.Errorf("loading relationships for folder %s: %w", folderID, relErr)
		}
		for _, rel := range rels {
			u, okU := g.index[rel.SourceID]
			v, okV := g.index[rel.TargetID]
			if !okU || !okV {
				b.logger.Warn("dropping edge with unknown endpoint",
					logging.FolderID(folderID),
					logging.String("source_id", rel.SourceID),
					logging.String("target_id", rel.TargetID),
					logging.String("relation_type", rel.RelationType))
				continue
			}
			weight := 1.0
			if rel.Weight != nil {
				weight = clamp01(*rel.Weight)
			}
			g.edges = append(g.edges, Edge{
				SourceID:     rel.SourceID,
				TargetID:     rel.TargetID,
				RelationType: rel.RelationType,
				Weight:       weight,
			})
			g.out[u] = append(g.out[u], HalfEdge{To: v, Weight: weight, Relation: rel.RelationType})
			g.in[v] = append(g.in[v], HalfEdge{To: u, Weight: weight, Relation: rel.RelationType})

			if g.outWeight[u] == nil {
				g.outWeight[u] = make(map[int]float64)
			}
			g.outWeight[u][v] = clamp01(g.outWeight[u][v] + weight)

			if u != v {
				if neighborSets[u] == nil {
					neighborSets[u] = make(map[int]struct{})
				}
				if neighborSets[v] == nil {
					neighborSets[v] = make(map[int]struct{})
				}
				neighborSets[u][v] = struct{}{}
				neighborSets[v][u] = struct{}{}
			}
		}
	}

	g.neighbors = make([][]int, n)
	for i, set := range neighborSets {
		if len(set) == 0 {
			continue
		}
		nbrs := make([]int, 0, len(set))
		for w := range set {
			nbrs = append(nbrs, w)
		}
		sort.Ints(nbrs)
		g.neighbors[i] = nbrs
	}

	g.categories = collectCategories(g.nodes)

	b.logger.Debug("graph built",
		logging.FolderID(folderID),
		logging.Int("nodes", g.NodeCount()),
		logging.Int("edges", g.EdgeCount()))

	return g, nil
}

// collectCategories returns the distinct node types present, in the stable
// order of AllNodeTypes.
func collectCategories(nodes []Node) []NodeType {
	present := make(map[NodeType]bool, len(AllNodeTypes))
	for _, node := range nodes {
		present[node.Type] = true
	}
	categories := make([]NodeType, 0, len(present))
	for _, t := range AllNodeTypes {
		if present[t] {
			categories = append(categories, t)
		}
	}
	return categories
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
