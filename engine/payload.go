package engine

import workflow "github.com/caojiachen1/CommandFlow-rs-sub000"

// Node is the reduced node representation the execution engine accepts.
type Node struct {
	ID        string         `json:"id"`
	Label     string         `json:"label"`
	Kind      workflow.Kind  `json:"kind"`
	PositionX float64        `json:"position_x"`
	PositionY float64        `json:"position_y"`
	Params    map[string]any `json:"params"`
}

// Edge is the reduced edge representation the execution engine accepts.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// Payload is a full workflow in the engine's wire shape.
type Payload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// FromGraph reduces a graph to the engine's wire shape.
func FromGraph(g *workflow.Graph) Payload {
	p := Payload{
		ID:    g.ID,
		Name:  g.Name,
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		p.Nodes[i] = fromNode(&n)
	}
	for i, e := range g.Edges {
		p.Edges[i] = Edge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		}
	}
	return p
}

func fromNode(n *workflow.Node) Node {
	return Node{
		ID:        n.ID,
		Label:     n.Label,
		Kind:      n.Kind,
		PositionX: n.Position.X,
		PositionY: n.Position.Y,
		Params:    workflow.CloneParams(n.Params),
	}
}
