// A self-contained tour of the editor and the step interpreter: build a
// small workflow in memory, then step through it against a stub engine that
// just prints what it would execute. No database or engine process needed.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
	"github.com/caojiachen1/CommandFlow-rs-sub000/editor"
	"github.com/caojiachen1/CommandFlow-rs-sub000/port"
	"github.com/caojiachen1/CommandFlow-rs-sub000/step"
)

// printEngine satisfies step.Engine without touching the OS.
type printEngine struct{}

func (printEngine) ExecuteNode(_ context.Context, node workflow.Node) error {
	fmt.Printf("  engine: execute %-12s %s\n", node.Kind, node.Label)
	return nil
}

func main() {
	ctx := context.Background()
	ed := editor.New()

	// ── Build the graph ───────────────────────────────────────────────
	trigger := ed.AddNode(workflow.KindManualTrigger, workflow.Position{X: 0, Y: 0})
	define := ed.AddNode(workflow.KindVarDefine, workflow.Position{X: 200, Y: 0})
	cond := ed.AddNode(workflow.KindCondition, workflow.Position{X: 400, Y: 0})
	big := ed.AddNode(workflow.KindShowMessage, workflow.Position{X: 600, Y: -80})
	small := ed.AddNode(workflow.KindShowMessage, workflow.Position{X: 600, Y: 80})

	ed.UpdateParams(define, map[string]any{
		"name":        "count",
		"valueType":   "number",
		"valueNumber": float64(5),
	})
	ed.UpdateParams(cond, map[string]any{
		"leftType":  "var",
		"left":      "count",
		"operator":  ">",
		"rightType": "literal",
		"right":     "3",
	})
	ed.UpdateParams(big, map[string]any{"message": "count is big"})
	ed.UpdateParams(small, map[string]any{"message": "count is small"})

	ed.Connect(editor.Connection{Source: trigger, SourceHandle: port.HandleNext, Target: define, TargetHandle: port.HandleIn})
	ed.Connect(editor.Connection{Source: define, SourceHandle: port.HandleNext, Target: cond, TargetHandle: port.HandleIn})
	ed.Connect(editor.Connection{Source: cond, SourceHandle: port.HandleTrue, Target: big, TargetHandle: port.HandleIn})
	ed.Connect(editor.Connection{Source: cond, SourceHandle: port.HandleFalse, Target: small, TargetHandle: port.HandleIn})

	fmt.Printf("built workflow with %d nodes and %d edges\n", len(ed.Nodes()), len(ed.Edges()))

	// ── Illegal wires are dropped silently ────────────────────────────
	ed.Connect(editor.Connection{Source: cond, SourceHandle: port.HandleTrue, Target: cond, TargetHandle: port.HandleIn})
	fmt.Printf("self-wire dropped, still %d edges\n", len(ed.Edges()))

	// ── Undo / redo ───────────────────────────────────────────────────
	extra := ed.AddNode(workflow.KindDelay, workflow.Position{X: 800, Y: 0})
	fmt.Printf("added %s, %d nodes\n", extra, len(ed.Nodes()))
	ed.Undo()
	fmt.Printf("undo, %d nodes\n", len(ed.Nodes()))
	ed.Redo()
	ed.Undo()

	// ── Step through against the stub engine ─────────────────────────
	sess := step.NewSession(ed, printEngine{}, nil)
	sess.SetStepDelay(0)
	if err := sess.Start(trigger); err != nil {
		log.Fatalf("start: %v", err)
	}
	fmt.Println("stepping:")
	outcome, err := sess.Run(ctx)
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	fmt.Printf("session ended: %s\n", outcome)

	// ── Save to the file format ───────────────────────────────────────
	g := ed.Export()
	file, err := workflow.EncodeFile(&g)
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	fmt.Printf("file envelope is %d bytes\n", len(file))

	var check workflow.File
	if err := json.Unmarshal(file, &check); err != nil {
		log.Fatalf("decode: %v", err)
	}
	fmt.Printf("round-trips as version %s with %d nodes\n", check.Version, len(check.Graph.Nodes))
}
