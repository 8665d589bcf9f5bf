package workflow

// Kind identifies a node's behavior. The set is closed; the catalog package
// declares display metadata and editable fields for every kind.
type Kind string

const (
	KindHotkeyTrigger  Kind = "hotkeyTrigger"
	KindTimerTrigger   Kind = "timerTrigger"
	KindManualTrigger  Kind = "manualTrigger"
	KindWindowTrigger  Kind = "windowTrigger"
	KindMouseClick     Kind = "mouseClick"
	KindMouseMove      Kind = "mouseMove"
	KindMouseDrag      Kind = "mouseDrag"
	KindMouseWheel     Kind = "mouseWheel"
	KindMouseDown      Kind = "mouseDown"
	KindMouseUp        Kind = "mouseUp"
	KindKeyboardKey    Kind = "keyboardKey"
	KindKeyboardInput  Kind = "keyboardInput"
	KindKeyboardDown   Kind = "keyboardDown"
	KindKeyboardUp     Kind = "keyboardUp"
	KindShortcut       Kind = "shortcut"
	KindScreenshot     Kind = "screenshot"
	KindGuiAgent       Kind = "guiAgent"
	KindWindowActivate Kind = "windowActivate"
	KindFileCopy       Kind = "fileCopy"
	KindFileMove       Kind = "fileMove"
	KindFileDelete     Kind = "fileDelete"
	KindFileReadText   Kind = "fileReadText"
	KindFileWriteText  Kind = "fileWriteText"
	KindClipboardRead  Kind = "clipboardRead"
	KindClipboardWrite Kind = "clipboardWrite"
	KindRunCommand     Kind = "runCommand"
	KindPythonCode     Kind = "pythonCode"
	KindShowMessage    Kind = "showMessage"
	KindDelay          Kind = "delay"
	KindCondition      Kind = "condition"
	KindLoop           Kind = "loop"
	KindWhileLoop      Kind = "whileLoop"
	KindErrorHandler   Kind = "errorHandler"
	KindImageMatch     Kind = "imageMatch"
	KindVarDefine      Kind = "varDefine"
	KindVarSet         Kind = "varSet"
	KindVarGet         Kind = "varGet"
	KindVarMath        Kind = "varMath"
	KindConstValue     Kind = "constValue"
)

// Position is a node's location on the canvas, in canvas units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents a single step in a workflow graph.
// Params holds the editable parameter values for the node's kind; keys
// missing from Params fall back to the catalog defaults, they are never
// treated as invalid.
type Node struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	Position    Position       `json:"position"`
	Params      map[string]any `json:"params"`
}

// Edge represents a directed wire from an output handle of one node to an
// input handle of another.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Graph is a complete workflow: nodes plus the wires between them.
type Graph struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// FindNode returns the node with the given ID, or nil.
func (g *Graph) FindNode(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// FindEdge returns the edge with the given ID, or nil.
func (g *Graph) FindEdge(id string) *Edge {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i]
		}
	}
	return nil
}

// Clone returns an independent deep copy of the graph.
func (g *Graph) Clone() Graph {
	out := Graph{
		ID:    g.ID,
		Name:  g.Name,
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Edges, g.Edges)
	return out
}

// Clone returns an independent deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.Params = CloneParams(n.Params)
	return out
}

// CloneParams deep-copies a parameter mapping, including nested JSON-like
// values.
func CloneParams(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
