package graph

// Presentation metadata for the UI viewer, keyed by the closed NodeType
// enum so a missing entry is impossible to introduce without touching this
// table.
type typeStyle struct {
	Icon  string
	Color string
}

var typeStyles = map[NodeType]typeStyle{
	NodeTypeAsset:         {Icon: "server", Color: "#1f77b4"},
	NodeTypeControl:       {Icon: "shield", Color: "#2ca02c"},
	NodeTypeRisk:          {Icon: "alert-triangle", Color: "#d62728"},
	NodeTypeThreat:        {Icon: "crosshair", Color: "#9467bd"},
	NodeTypeVulnerability: {Icon: "bug", Color: "#ff7f0e"},
	NodeTypeUser:          {Icon: "user", Color: "#8c564b"},
	NodeTypeSystem:        {Icon: "cpu", Color: "#17becf"},
	NodeTypeData:          {Icon: "database", Color: "#e377c2"},
	NodeTypeNetwork:       {Icon: "share-2", Color: "#7f7f7f"},
	NodeTypeApplication:   {Icon: "box", Color: "#bcbd22"},
}

// ViewNode is a node prepared for the generic graph viewer.
type ViewNode struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       NodeType `json:"type"`
	Icon       string   `json:"icon"`
	Color      string   `json:"color"`
	SourceType string   `json:"source_type,omitempty"`
	SourceID   string   `json:"source_id,omitempty"`
}

// ViewLink is an edge prepared for the generic graph viewer.
type ViewLink struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	RelationType string  `json:"relation_type"`
	Weight       float64 `json:"weight"`
}

// ViewCategory describes one node type present in the graph, for legends.
type ViewCategory struct {
	Name  NodeType `json:"name"`
	Icon  string   `json:"icon"`
	Color string   `json:"color"`
}

// View is the raw rendering payload for the UI's generic graph viewer.
// It carries no analytics.
type View struct {
	Nodes      []ViewNode     `json:"nodes"`
	Links      []ViewLink     `json:"links"`
	Categories []ViewCategory `json:"categories"`
}

// BuildView converts a Graph into its viewer payload.
func BuildView(g *Graph) *View {
	view := &View{
		Nodes:      make([]ViewNode, 0, g.NodeCount()),
		Links:      make([]ViewLink, 0, g.EdgeCount()),
		Categories: make([]ViewCategory, 0, len(g.Categories())),
	}
	for _, node := range g.Nodes() {
		style := typeStyles[node.Type]
		view.Nodes = append(view.Nodes, ViewNode{
			ID:         node.ID,
			Name:       node.Name,
			Type:       node.Type,
			Icon:       style.Icon,
			Color:      style.Color,
			SourceType: node.SourceType,
			SourceID:   node.SourceID,
		})
	}
	for _, edge := range g.Edges() {
		view.Links = append(view.Links, ViewLink{
			Source:       edge.SourceID,
			Target:       edge.TargetID,
			RelationType: edge.RelationType,
			Weight:       edge.Weight,
		})
	}
	for _, t := range g.Categories() {
		style := typeStyles[t]
		view.Categories = append(view.Categories, ViewCategory{Name: t, Icon: style.Icon, Color: style.Color})
	}
	return view
}
