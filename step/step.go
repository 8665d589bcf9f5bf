// Package step drives the node-by-node debugging loop: run one node on the
// external execution engine, then decide locally which wire to follow next.
// The branching decisions replay the engine's condition and loop semantics
// against a best-effort variable table; they never depend on the engine
// reporting control flow back.
package step

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
	"github.com/caojiachen1/CommandFlow-rs-sub000/port"
)

// maxContinuousSteps is the hard guard against runaway loops from a
// misconfigured graph in continuous-step mode.
const maxContinuousSteps = 2000

// defaultStepDelay is the fixed pause between nodes in continuous mode.
const defaultStepDelay = 150 * time.Millisecond

// Engine executes a single node on the external automation engine and
// returns once the node has completed.
type Engine interface {
	ExecuteNode(ctx context.Context, node workflow.Node) error
}

// Source supplies the current graph. The graph may be edited concurrently
// with a session, so the session re-reads it on every transition.
type Source interface {
	Graph() workflow.Graph
}

// Context is the transient state of one debug session: the local variable
// table and the per-loop counters. It is discarded when the session ends.
type Context struct {
	Variables       map[string]any
	LoopRemaining   map[string]int
	WhileIterations map[string]int
}

func newContext() *Context {
	return &Context{
		Variables:       map[string]any{},
		LoopRemaining:   map[string]int{},
		WhileIterations: map[string]int{},
	}
}

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StatePositioned
	StateAwaiting
)

// Outcome reports how a step or run left the session.
type Outcome string

const (
	// OutcomeAdvanced means the session moved to the next node.
	OutcomeAdvanced Outcome = "advanced"
	// OutcomeDone means the current node had no outgoing wire to follow.
	OutcomeDone Outcome = "done"
	// OutcomeFault means the current node vanished mid-session; the
	// session was reset with a warning.
	OutcomeFault Outcome = "fault"
	// OutcomeStopped means the session-scoped stop flag was set.
	OutcomeStopped Outcome = "stopped"
	// OutcomeGuard means continuous mode hit the runaway iteration guard.
	OutcomeGuard Outcome = "guard"
)

// Session steps through a graph one node at a time.
type Session struct {
	source Source
	engine Engine
	log    *zap.SugaredLogger

	state   State
	current string
	sctx    *Context
	stop    chan struct{}
	delay   time.Duration
}

// NewSession creates an idle session. A nil logger is replaced with a
// no-op logger.
func NewSession(source Source, engine Engine, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{
		source: source,
		engine: engine,
		log:    log,
		delay:  defaultStepDelay,
	}
}

// SetStepDelay overrides the inter-step delay used by Run.
func (s *Session) SetStepDelay(d time.Duration) { s.delay = d }

// Start positions the session at the given node with a fresh step context.
func (s *Session) Start(startNodeID string) error {
	g := s.source.Graph()
	if g.FindNode(startNodeID) == nil {
		return fmt.Errorf("%w: %s", workflow.ErrNodeNotFound, startNodeID)
	}
	s.current = startNodeID
	s.sctx = newContext()
	s.state = StatePositioned
	s.stop = make(chan struct{})
	return nil
}

// Stop raises the session-scoped stop flag. The running loop exits at the
// next opportunity without issuing further engine requests.
func (s *Session) Stop() {
	if s.stop != nil {
		select {
		case <-s.stop:
		default:
			close(s.stop)
		}
	}
}

// Reset returns the session to idle and discards the step context.
func (s *Session) Reset() {
	s.state = StateIdle
	s.current = ""
	s.sctx = nil
}

// State returns the session's lifecycle state.
func (s *Session) State() State { return s.state }

// Current returns the id of the node the session is positioned at.
func (s *Session) Current() string { return s.current }

// Variables returns a snapshot of the session's local variable table.
func (s *Session) Variables() map[string]any {
	if s.sctx == nil {
		return map[string]any{}
	}
	return workflow.CloneParams(s.sctx.Variables)
}

func (s *Session) stopped() bool {
	if s.stop == nil {
		return false
	}
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Step executes the current node on the engine and advances to the next
// node. Engine failures propagate as errors and reset the session so a
// retry starts clean.
func (s *Session) Step(ctx context.Context) (Outcome, error) {
	if s.state == StateIdle {
		return OutcomeDone, fmt.Errorf("step: no active session")
	}
	if s.stopped() {
		s.Reset()
		return OutcomeStopped, nil
	}

	g := s.source.Graph()
	node := g.FindNode(s.current)
	if node == nil {
		// The graph can be edited while a session is in flight; a deleted
		// current node ends the session, it must not crash it.
		s.log.Warnw("current node vanished, ending step session", "node_id", s.current)
		s.Reset()
		return OutcomeFault, nil
	}

	s.state = StateAwaiting
	if err := s.engine.ExecuteNode(ctx, node.Clone()); err != nil {
		s.Reset()
		return OutcomeFault, fmt.Errorf("step: execute node %s: %w", node.ID, err)
	}
	if s.stopped() {
		s.Reset()
		return OutcomeStopped, nil
	}

	if err := s.applyEffects(node); err != nil {
		s.Reset()
		return OutcomeFault, err
	}

	next, ok := s.pickNext(&g, node)
	if !ok {
		s.Reset()
		return OutcomeDone, nil
	}
	s.current = next
	s.state = StatePositioned
	return OutcomeAdvanced, nil
}

// Run repeats Step with a fixed inter-step delay until the session ends,
// the stop flag is raised, or the iteration guard trips. Hitting the guard
// ends the session with a warning rather than an error.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	for i := 0; i < maxContinuousSteps; i++ {
		outcome, err := s.Step(ctx)
		if err != nil || outcome != OutcomeAdvanced {
			return outcome, err
		}

		select {
		case <-ctx.Done():
			s.Reset()
			return OutcomeStopped, ctx.Err()
		case <-s.stop:
			s.Reset()
			return OutcomeStopped, nil
		case <-time.After(s.delay):
		}
	}
	s.log.Warnw("continuous step guard tripped, ending session",
		"node_id", s.current, "max_steps", maxContinuousSteps)
	s.Reset()
	return OutcomeGuard, nil
}

// applyEffects re-derives the variable table updates of variable nodes.
// This is a local re-derivation used only for branching; side effects the
// engine performs for other node kinds are not observable here.
func (s *Session) applyEffects(node *workflow.Node) error {
	switch node.Kind {
	case workflow.KindVarDefine:
		name := paramString(node, "name")
		if name != "" {
			if _, exists := s.sctx.Variables[name]; !exists {
				s.sctx.Variables[name] = typedParamValue(node, "value")
			}
		}
	case workflow.KindVarSet:
		name := paramString(node, "name")
		if name != "" {
			s.sctx.Variables[name] = typedParamValue(node, "value")
		}
	case workflow.KindVarMath:
		if _, err := applyVarMath(node, s.sctx.Variables); err != nil {
			return err
		}
	}
	return nil
}

// pickNext decides which wire to follow out of a node, replaying the
// engine's condition and loop semantics locally.
func (s *Session) pickNext(g *workflow.Graph, node *workflow.Node) (string, bool) {
	outgoing := controlEdges(g, node.ID)

	switch node.Kind {
	case workflow.KindCondition:
		want := port.HandleFalse
		if evalCondition(node, s.sctx.Variables) {
			want = port.HandleTrue
		}
		if e := findByHandle(outgoing, want); e != nil {
			return e.Target, true
		}
		return firstTarget(outgoing)

	case workflow.KindLoop:
		remaining, seeded := s.sctx.LoopRemaining[node.ID]
		if !seeded {
			remaining = paramInt(node, "times")
		}
		if remaining > 0 {
			if e := loopEdge(outgoing); e != nil {
				s.sctx.LoopRemaining[node.ID] = remaining - 1
				return e.Target, true
			}
		}
		delete(s.sctx.LoopRemaining, node.ID)
		if e := doneEdge(outgoing); e != nil {
			return e.Target, true
		}
		return "", false

	case workflow.KindWhileLoop:
		max := paramInt(node, "maxIterations")
		if max < 1 {
			max = 1
		}
		iterations := s.sctx.WhileIterations[node.ID]
		holds := evalCondition(node, s.sctx.Variables)
		if holds && iterations < max {
			if e := loopEdge(outgoing); e != nil {
				s.sctx.WhileIterations[node.ID] = iterations + 1
				return e.Target, true
			}
		} else if holds && iterations >= max {
			s.log.Warnw("while loop reached max iterations, taking done branch",
				"node_id", node.ID, "max_iterations", max)
		}
		delete(s.sctx.WhileIterations, node.ID)
		if e := doneEdge(outgoing); e != nil {
			return e.Target, true
		}
		return "", false

	default:
		// A node with multiple unlabelled outgoing edges is not a defined
		// case; follow the first.
		return firstTarget(outgoing)
	}
}

func controlEdges(g *workflow.Graph, nodeID string) []workflow.Edge {
	var out []workflow.Edge
	for _, e := range g.Edges {
		if e.Source == nodeID && port.IsControlFlowEdge(e.SourceHandle, e.TargetHandle) {
			out = append(out, e)
		}
	}
	return out
}

func findByHandle(edges []workflow.Edge, handle string) *workflow.Edge {
	for i := range edges {
		if edges[i].SourceHandle == handle {
			return &edges[i]
		}
	}
	return nil
}

func loopEdge(edges []workflow.Edge) *workflow.Edge {
	if e := findByHandle(edges, port.HandleLoop); e != nil {
		return e
	}
	if len(edges) > 0 {
		return &edges[0]
	}
	return nil
}

func doneEdge(edges []workflow.Edge) *workflow.Edge {
	if e := findByHandle(edges, port.HandleDone); e != nil {
		return e
	}
	for i := range edges {
		if edges[i].SourceHandle != port.HandleLoop {
			return &edges[i]
		}
	}
	return nil
}

func firstTarget(edges []workflow.Edge) (string, bool) {
	if len(edges) == 0 {
		return "", false
	}
	return edges[0].Target, true
}
