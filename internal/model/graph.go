package model

// GraphNode is a company or person in the ownership/control graph.
type GraphNode struct {
	ID      string     `json:"id"`
	Regcode string     `json:"regcode,omitempty"`
	Name    string     `json:"name"`
	Kind    EntityKind `json:"kind"`
	IsUBO   bool       `json:"is_ubo,omitempty"` // ultimate beneficial owner
}

// GraphEdge is a directed ownership or control relation between two nodes.
type GraphEdge struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	Relation     string   `json:"relation,omitempty"` // "shareholder", "board", ...
	SharePercent *float64 `json:"share_percent,omitempty"`
}

// OwnershipGraph is the backend-assembled ownership/control graph around a
// target company, rendered by the portal front-end.
type OwnershipGraph struct {
	Root  string      `json:"root"` // node ID of the target company
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
