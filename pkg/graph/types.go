package graph

import (
	"errors"
	"fmt"
)

// Errors for graph construction and lookup
var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrNodeNotFound   = errors.New("node not found in graph")
)

// NodeType classifies a node in the security graph.
// The set is closed: anything an entity source hands us outside this list is
// rejected at build time rather than carried as an opaque string.
type NodeType string

const (
	NodeTypeAsset         NodeType = "asset"
	NodeTypeControl       NodeType = "control"
	NodeTypeRisk          NodeType = "risk"
	NodeTypeThreat        NodeType = "threat"
	NodeTypeVulnerability NodeType = "vulnerability"
	NodeTypeUser          NodeType = "user"
	NodeTypeSystem        NodeType = "system"
	NodeTypeData          NodeType = "data"
	NodeTypeNetwork       NodeType = "network"
	NodeTypeApplication   NodeType = "application"
)

// AllNodeTypes lists every valid node type in stable order.
var AllNodeTypes = []NodeType{
	NodeTypeAsset,
	NodeTypeControl,
	NodeTypeRisk,
	NodeTypeThreat,
	NodeTypeVulnerability,
	NodeTypeUser,
	NodeTypeSystem,
	NodeTypeData,
	NodeTypeNetwork,
	NodeTypeApplication,
}

// ParseNodeType converts a string to a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	switch t {
	case NodeTypeAsset, NodeTypeControl, NodeTypeRisk, NodeTypeThreat,
		NodeTypeVulnerability, NodeTypeUser, NodeTypeSystem, NodeTypeData,
		NodeTypeNetwork, NodeTypeApplication:
		return t, nil
	}
	return "", fmt.Errorf("unknown node type %q", s)
}

// Node is a vertex in the security graph.
type Node struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Type            NodeType `json:"type"`
	FolderID        string   `json:"folder_id"`
	IntrinsicWeight float64  `json:"intrinsic_weight"`

	// Back-reference to the originating entity, for UI navigation only.
	// Never consulted by graph logic.
	SourceType string `json:"source_type,omitempty"`
	SourceID   string `json:"source_id,omitempty"`
}

// Edge is a typed, weighted, directed connection between two nodes.
// Weight is interpreted as propagation probability/strength in [0,1].
type Edge struct {
	SourceID     string  `json:"source_id"`
	TargetID     string  `json:"target_id"`
	RelationType string  `json:"relation_type"`
	Weight       float64 `json:"weight"`
}

// HalfEdge is the adjacency-list form of an Edge: the far endpoint as a
// dense index plus the edge attributes.
type HalfEdge struct {
	To       int
	Weight   float64
	Relation string
}

// Graph is an immutable security graph for one folder. Nodes live in an
// arena slice and every traversal works on dense int indices; string IDs
// are resolved once through the index map. Cycles are just back-edges in
// the adjacency lists.
type Graph struct {
	folderID string

	nodes []Node
	index map[string]int

	out [][]HalfEdge
	in  [][]HalfEdge

	// neighbors holds, per node, the distinct undirected neighbor set as
	// sorted dense indices. Degree and betweenness both read this.
	neighbors [][]int

	// outWeight holds, per node, accumulated outgoing weight keyed by
	// target dense index (duplicate ordered pairs accumulate, capped at 1).
	outWeight []map[int]float64

	edges      []Edge
	categories []NodeType
}

// FolderID returns the folder this graph was built for.
func (g *Graph) FolderID() string { return g.folderID }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges retained at build time.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns the node arena. Callers must not mutate it.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the retained edges in input order.
func (g *Graph) Edges() []Edge { return g.edges }

// Categories returns the distinct node types present, in stable order.
func (g *Graph) Categories() []NodeType { return g.categories }

// DenseID resolves a string node ID to its dense index.
func (g *Graph) DenseID(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Node returns the node at a dense index.
func (g *Graph) Node(dense int) Node { return g.nodes[dense] }

// NodeByID looks up a node by its string ID.
func (g *Graph) NodeByID(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Out returns the outgoing adjacency of a node.
func (g *Graph) Out(dense int) []HalfEdge { return g.out[dense] }

// In returns the incoming adjacency of a node.
func (g *Graph) In(dense int) []HalfEdge { return g.in[dense] }

// Neighbors returns the distinct undirected neighbor indices of a node,
// sorted ascending.
func (g *Graph) Neighbors(dense int) []int { return g.neighbors[dense] }

// Degree returns the undirected degree (distinct neighbor count) of a node.
func (g *Graph) Degree(dense int) int { return len(g.neighbors[dense]) }

// OutWeights returns accumulated outgoing weights keyed by target index.
func (g *Graph) OutWeights(dense int) map[int]float64 { return g.outWeight[dense] }
