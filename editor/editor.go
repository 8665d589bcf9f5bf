// Package editor owns the canonical node/edge state of a workflow being
// edited: every mutation goes through an enumerated operation that applies
// the port model's legality rules and manages undo/redo snapshots. Illegal
// or ambiguous interactive operations are silent no-ops, never errors.
package editor

import (
	"github.com/google/uuid"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
	"github.com/caojiachen1/CommandFlow-rs-sub000/catalog"
	"github.com/caojiachen1/CommandFlow-rs-sub000/port"
)

// pasteOffset is the positional shift applied to duplicated and pasted
// nodes, in canvas units.
const pasteOffset = 32.0

// Connection describes a requested wire between two handles.
type Connection struct {
	Source       string
	SourceHandle string
	Target       string
	TargetHandle string
}

// Editor is the single owner of a workflow graph's editing state.
type Editor struct {
	graph         workflow.Graph
	selectedNodes map[string]bool
	selectedEdges map[string]bool
	hist          history
	clipboard     []workflow.Node
}

// New creates an editor holding an empty untitled workflow.
func New() *Editor {
	return &Editor{
		graph: workflow.Graph{
			ID:    uuid.NewString(),
			Name:  "Untitled workflow",
			Nodes: []workflow.Node{},
			Edges: []workflow.Edge{},
		},
		selectedNodes: map[string]bool{},
		selectedEdges: map[string]bool{},
	}
}

// Graph returns an independent deep copy of the current graph.
func (e *Editor) Graph() workflow.Graph {
	return e.graph.Clone()
}

// Nodes returns a copy of the current node list.
func (e *Editor) Nodes() []workflow.Node {
	g := e.graph.Clone()
	return g.Nodes
}

// Edges returns a copy of the current edge list.
func (e *Editor) Edges() []workflow.Edge {
	g := e.graph.Clone()
	return g.Edges
}

func (e *Editor) current() snapshot {
	g := e.graph.Clone()
	return snapshot{nodes: g.Nodes, edges: g.Edges}
}

func (e *Editor) install(s snapshot) {
	e.graph.Nodes = s.nodes
	e.graph.Edges = s.edges
	e.pruneSelection()
}

func (e *Editor) recordHistory() {
	e.hist.record(e.current())
}

// AddNode creates a node of the given kind at a canvas position, seeded
// with the catalog defaults, and returns its id.
func (e *Editor) AddNode(kind workflow.Kind, pos workflow.Position) string {
	meta := catalog.Get(kind)
	e.recordHistory()
	n := workflow.Node{
		ID:          uuid.NewString(),
		Kind:        kind,
		Label:       meta.Label,
		Description: meta.Description,
		Position:    pos,
		Params:      catalog.DefaultParams(kind),
	}
	e.graph.Nodes = append(e.graph.Nodes, n)
	return n.ID
}

// Connect wires two handles together. Invalid drops are common during
// interactive editing, so anything that fails to normalize, connects a node
// to itself, or mixes incompatible types is dropped without error, and
// re-connecting an existing wire is a no-op. On handles with a connection
// cap the oldest excess edges are evicted first, which lets a new wire
// replace the old one instead of stacking illegally.
func (e *Editor) Connect(conn Connection) {
	e.connect(conn, true)
}

func (e *Editor) connect(conn Connection, snapshotFirst bool) {
	if conn.Source == conn.Target {
		return
	}
	src := e.graph.FindNode(conn.Source)
	tgt := e.graph.FindNode(conn.Target)
	if src == nil || tgt == nil {
		return
	}
	sh, ok := port.Normalize(src.Kind, port.Out, conn.SourceHandle)
	if !ok {
		return
	}
	th, ok := port.Normalize(tgt.Kind, port.In, conn.TargetHandle)
	if !ok {
		return
	}
	if !port.Compatible(port.SourceType(src.Kind, src.Params, sh), port.TargetType(tgt.Kind, th)) {
		return
	}

	// An identical wire already exists: connecting it again is a pure
	// no-op. The edge keeps its id and history is untouched.
	for _, ed := range e.graph.Edges {
		if ed.Source == conn.Source && ed.SourceHandle == sh &&
			ed.Target == conn.Target && ed.TargetHandle == th {
			return
		}
	}

	evict := map[string]bool{}
	e.planEviction(evict, conn.Source, sh, src.Kind, port.Out)
	e.planEviction(evict, conn.Target, th, tgt.Kind, port.In)

	if snapshotFirst {
		e.recordHistory()
	}
	if len(evict) > 0 {
		kept := e.graph.Edges[:0]
		for _, ed := range e.graph.Edges {
			if !evict[ed.ID] {
				kept = append(kept, ed)
			}
		}
		e.graph.Edges = kept
	}
	e.graph.Edges = append(e.graph.Edges, workflow.Edge{
		ID:           uuid.NewString(),
		Source:       conn.Source,
		SourceHandle: sh,
		Target:       conn.Target,
		TargetHandle: th,
	})
	e.pruneSelection()
}

// planEviction marks the oldest edges on a capped (node, handle) pair for
// removal until exactly one free slot remains.
func (e *Editor) planEviction(evict map[string]bool, nodeID, handleID string, kind workflow.Kind, dir port.Direction) {
	h, ok := port.FindHandle(kind, dir, handleID)
	if !ok || h.MaxConnections <= 0 {
		return
	}
	var incident []string
	for _, ed := range e.graph.Edges {
		if evict[ed.ID] {
			continue
		}
		if dir == port.Out && ed.Source == nodeID && ed.SourceHandle == handleID {
			incident = append(incident, ed.ID)
		}
		if dir == port.In && ed.Target == nodeID && ed.TargetHandle == handleID {
			incident = append(incident, ed.ID)
		}
	}
	// Edges are kept in insertion order, so the front of the slice is the
	// oldest.
	for len(incident) > h.MaxConnections-1 {
		evict[incident[0]] = true
		incident = incident[1:]
	}
}

// Reconnect removes an existing edge and applies Connect semantics for its
// replacement. If the replacement is illegal the net effect is deletion.
func (e *Editor) Reconnect(oldEdgeID string, conn Connection) {
	old := e.graph.FindEdge(oldEdgeID)
	if old == nil {
		e.Connect(conn)
		return
	}
	e.recordHistory()
	e.removeEdges(func(ed workflow.Edge) bool { return ed.ID == oldEdgeID })
	e.connect(conn, false)
}

// DisconnectHandle removes every edge incident on the normalized handle.
// The UI calls this when a wire is dragged away from its anchor, so the
// edge is not momentarily duplicated.
func (e *Editor) DisconnectHandle(nodeID string, dir port.Direction, handleID string) {
	n := e.graph.FindNode(nodeID)
	if n == nil {
		return
	}
	h, ok := port.Normalize(n.Kind, dir, handleID)
	if !ok {
		return
	}
	match := func(ed workflow.Edge) bool {
		if dir == port.Out {
			return ed.Source == nodeID && ed.SourceHandle == h
		}
		return ed.Target == nodeID && ed.TargetHandle == h
	}
	any := false
	for _, ed := range e.graph.Edges {
		if match(ed) {
			any = true
			break
		}
	}
	if !any {
		return
	}
	e.recordHistory()
	e.removeEdges(match)
}

func (e *Editor) removeEdges(match func(workflow.Edge) bool) {
	kept := e.graph.Edges[:0]
	for _, ed := range e.graph.Edges {
		if !match(ed) {
			kept = append(kept, ed)
		}
	}
	e.graph.Edges = kept
	e.pruneSelection()
}

// SelectNodes replaces the node selection. Selection changes are not
// snapshotted.
func (e *Editor) SelectNodes(ids ...string) {
	e.selectedNodes = map[string]bool{}
	for _, id := range ids {
		if e.graph.FindNode(id) != nil {
			e.selectedNodes[id] = true
		}
	}
}

// SelectEdges replaces the edge selection.
func (e *Editor) SelectEdges(ids ...string) {
	e.selectedEdges = map[string]bool{}
	for _, id := range ids {
		if e.graph.FindEdge(id) != nil {
			e.selectedEdges[id] = true
		}
	}
}

// ClearSelection empties both selections.
func (e *Editor) ClearSelection() {
	e.selectedNodes = map[string]bool{}
	e.selectedEdges = map[string]bool{}
}

// SelectedNodes returns the ids of the currently selected nodes.
func (e *Editor) SelectedNodes() []string {
	var out []string
	for _, n := range e.graph.Nodes {
		if e.selectedNodes[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

func (e *Editor) pruneSelection() {
	for id := range e.selectedNodes {
		if e.graph.FindNode(id) == nil {
			delete(e.selectedNodes, id)
		}
	}
	for id := range e.selectedEdges {
		if e.graph.FindEdge(id) == nil {
			delete(e.selectedEdges, id)
		}
	}
}

// DeleteSelected removes all selected nodes, every edge touching them, and
// all selected edges, then clears the selection. Deleting an empty
// selection is a no-op.
func (e *Editor) DeleteSelected() {
	if len(e.selectedNodes) == 0 && len(e.selectedEdges) == 0 {
		return
	}
	e.recordHistory()
	doomed := e.selectedNodes
	kept := e.graph.Nodes[:0]
	for _, n := range e.graph.Nodes {
		if !doomed[n.ID] {
			kept = append(kept, n)
		}
	}
	e.graph.Nodes = kept
	e.removeEdges(func(ed workflow.Edge) bool {
		return doomed[ed.Source] || doomed[ed.Target] || e.selectedEdges[ed.ID]
	})
	e.ClearSelection()
}

// Duplicate deep-copies the given nodes with fresh ids and a fixed
// positional offset. Edges are not cloned. Returns the new ids.
func (e *Editor) Duplicate(ids ...string) []string {
	originals := e.pickNodes(ids)
	if len(originals) == 0 {
		return nil
	}
	e.recordHistory()
	return e.insertCopies(originals)
}

// Copy stores deep copies of the given nodes in the paste buffer. The
// buffer persists across multiple pastes until overwritten by a new copy.
func (e *Editor) Copy(ids ...string) {
	originals := e.pickNodes(ids)
	if len(originals) == 0 {
		return
	}
	e.clipboard = originals
}

// Paste inserts the buffered nodes with fresh ids and a positional offset.
// Repeated pastes cascade, each shifted further from the source.
func (e *Editor) Paste() []string {
	if len(e.clipboard) == 0 {
		return nil
	}
	e.recordHistory()
	newIDs := e.insertCopies(e.clipboard)
	for i := range e.clipboard {
		e.clipboard[i].Position.X += pasteOffset
		e.clipboard[i].Position.Y += pasteOffset
	}
	return newIDs
}

func (e *Editor) pickNodes(ids []string) []workflow.Node {
	var out []workflow.Node
	for _, id := range ids {
		if n := e.graph.FindNode(id); n != nil {
			out = append(out, n.Clone())
		}
	}
	return out
}

func (e *Editor) insertCopies(originals []workflow.Node) []string {
	newIDs := make([]string, 0, len(originals))
	for _, n := range originals {
		c := n.Clone()
		c.ID = uuid.NewString()
		c.Position.X += pasteOffset
		c.Position.Y += pasteOffset
		e.graph.Nodes = append(e.graph.Nodes, c)
		newIDs = append(newIDs, c.ID)
	}
	return newIDs
}

// UpdateParams replaces a node's parameter mapping wholesale. Parameter
// edits are continuous typing input and are deliberately not snapshotted.
func (e *Editor) UpdateParams(nodeID string, params map[string]any) {
	n := e.graph.FindNode(nodeID)
	if n == nil {
		return
	}
	n.Params = workflow.CloneParams(params)
}

// MoveNode updates a node's canvas position without touching history.
func (e *Editor) MoveNode(nodeID string, pos workflow.Position) {
	if n := e.graph.FindNode(nodeID); n != nil {
		n.Position = pos
	}
}

// Export returns the graph as an immutable value for serialization.
func (e *Editor) Export() workflow.Graph {
	return e.graph.Clone()
}

// Import replaces the whole graph. No merging or reconciliation with the
// current graph is attempted.
func (e *Editor) Import(g workflow.Graph) {
	e.recordHistory()
	e.graph = g.Clone()
	if e.graph.Nodes == nil {
		e.graph.Nodes = []workflow.Node{}
	}
	if e.graph.Edges == nil {
		e.graph.Edges = []workflow.Edge{}
	}
	e.ClearSelection()
}

// Undo reverts the most recent snapshotted mutation. Undoing with an empty
// past stack is a no-op.
func (e *Editor) Undo() {
	if s, ok := e.hist.undo(e.current()); ok {
		e.install(s)
	}
}

// Redo reapplies the most recently undone mutation. Redo is only possible
// immediately after an undo; any fresh mutation clears the redo stack.
func (e *Editor) Redo() {
	if s, ok := e.hist.redo(e.current()); ok {
		e.install(s)
	}
}

// CanUndo reports whether an undo step is available.
func (e *Editor) CanUndo() bool { return len(e.hist.past) > 0 }

// CanRedo reports whether a redo step is available.
func (e *Editor) CanRedo() bool { return len(e.hist.future) > 0 }
