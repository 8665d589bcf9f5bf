// Package port derives the connectable surface of each node kind: which
// flow and parameter handles exist, how many connections each admits, and
// which value types may be wired together. It never mutates the graph.
package port

import (
	"strings"
	"sync"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
	"github.com/caojiachen1/CommandFlow-rs-sub000/catalog"
)

// ValueType is the type carried by a handle. Flow handles carry control;
// parameter handles carry one of the value types.
type ValueType string

const (
	TypeControl ValueType = "control"
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeJSON    ValueType = "json"
	TypeAny     ValueType = "any"
)

// Direction distinguishes input handles from output handles.
type Direction int

const (
	In Direction = iota
	Out
)

// Flow handle names. These are the only source/target handle ids that carry
// control flow; everything else is value wiring.
const (
	HandleIn    = "in"
	HandleNext  = "next"
	HandleTrue  = "true"
	HandleFalse = "false"
	HandleLoop  = "loop"
	HandleDone  = "done"
)

const (
	paramPrefix = "param:"
	paramSuffix = ":in"
)

// Handle is one named connection point on a node kind.
// MaxConnections 0 means unlimited.
type Handle struct {
	ID             string `json:"id"`
	Label          string `json:"label,omitempty"`
	MaxConnections int    `json:"maxConnections"`
}

// Spec is the full connectable surface of a node kind.
type Spec struct {
	Inputs  []Handle `json:"inputs"`
	Outputs []Handle `json:"outputs"`
}

var (
	specMu    sync.Mutex
	specCache = map[workflow.Kind]Spec{}
)

// SpecFor computes the port spec of a kind: the kind's static flow handles
// merged with one parameter input handle per non-boolean catalog field.
// The result depends only on the kind and is memoized.
func SpecFor(kind workflow.Kind) Spec {
	specMu.Lock()
	defer specMu.Unlock()
	if spec, ok := specCache[kind]; ok {
		return spec
	}
	spec := buildSpec(kind)
	specCache[kind] = spec
	return spec
}

func buildSpec(kind workflow.Kind) Spec {
	var spec Spec

	if !isTrigger(kind) {
		spec.Inputs = append(spec.Inputs, Handle{ID: HandleIn, MaxConnections: 0})
	}

	switch kind {
	case workflow.KindCondition, workflow.KindImageMatch:
		spec.Outputs = append(spec.Outputs,
			Handle{ID: HandleTrue, Label: "True", MaxConnections: 1},
			Handle{ID: HandleFalse, Label: "False", MaxConnections: 1},
		)
	case workflow.KindLoop, workflow.KindWhileLoop:
		spec.Outputs = append(spec.Outputs,
			Handle{ID: HandleLoop, Label: "Loop", MaxConnections: 1},
			Handle{ID: HandleDone, Label: "Done", MaxConnections: 1},
		)
	default:
		spec.Outputs = append(spec.Outputs, Handle{ID: HandleNext, MaxConnections: 1})
	}

	// Value outputs for the pure-output family.
	switch kind {
	case workflow.KindConstValue, workflow.KindVarGet, workflow.KindVarDefine, workflow.KindVarSet:
		spec.Outputs = append(spec.Outputs, Handle{ID: "value", Label: "Value", MaxConnections: 0})
	case workflow.KindVarMath:
		spec.Outputs = append(spec.Outputs, Handle{ID: "result", Label: "Result", MaxConnections: 0})
	}

	// One parameter input per editable non-boolean field, so upstream
	// computed values can override literal parameter entry.
	for _, f := range catalog.Get(kind).Fields {
		if f.Type == catalog.FieldBoolean {
			continue
		}
		spec.Inputs = append(spec.Inputs, Handle{
			ID:             ParamHandleID(f.Key),
			Label:          f.Label,
			MaxConnections: 1,
		})
	}

	return spec
}

func isTrigger(kind workflow.Kind) bool {
	switch kind {
	case workflow.KindHotkeyTrigger, workflow.KindTimerTrigger,
		workflow.KindManualTrigger, workflow.KindWindowTrigger:
		return true
	}
	return false
}

// ParamHandleID returns the input handle id for a parameter field key.
func ParamHandleID(fieldKey string) string {
	return paramPrefix + fieldKey + paramSuffix
}

// ParamKey extracts the field key from a parameter input handle id.
func ParamKey(handleID string) (string, bool) {
	if !strings.HasPrefix(handleID, paramPrefix) || !strings.HasSuffix(handleID, paramSuffix) {
		return "", false
	}
	key := handleID[len(paramPrefix) : len(handleID)-len(paramSuffix)]
	if key == "" {
		return "", false
	}
	return key, true
}

// IsParamHandle reports whether a handle id names a parameter input.
func IsParamHandle(handleID string) bool {
	_, ok := ParamKey(handleID)
	return ok
}

// Normalize resolves a possibly-empty or stale handle id against the
// declared ports of a kind. A declared id resolves to itself. An empty or
// unknown id resolves to the kind's only flow handle in that direction
// (parameter and value handles never apply implicitly), or to the single
// declared port when there is exactly one; anything else is unresolvable.
func Normalize(kind workflow.Kind, dir Direction, handleID string) (string, bool) {
	spec := SpecFor(kind)
	handles := spec.Inputs
	if dir == Out {
		handles = spec.Outputs
	}
	for _, h := range handles {
		if h.ID == handleID {
			return h.ID, true
		}
	}
	var flow []string
	for _, h := range handles {
		if isFlowHandle(h.ID) {
			flow = append(flow, h.ID)
		}
	}
	if len(flow) == 1 {
		return flow[0], true
	}
	if len(handles) == 1 {
		return handles[0].ID, true
	}
	return "", false
}

func isFlowHandle(id string) bool {
	switch id {
	case HandleIn, HandleNext, HandleTrue, HandleFalse, HandleLoop, HandleDone:
		return true
	}
	return false
}

// FindHandle returns the declared handle with the given id, if any.
func FindHandle(kind workflow.Kind, dir Direction, handleID string) (Handle, bool) {
	spec := SpecFor(kind)
	handles := spec.Inputs
	if dir == Out {
		handles = spec.Outputs
	}
	for _, h := range handles {
		if h.ID == handleID {
			return h, true
		}
	}
	return Handle{}, false
}

// SourceType resolves the value type of an output handle. Flow handles are
// always control. The pure-output family resolves its value output from the
// node's current parameters; every other value output is any.
func SourceType(kind workflow.Kind, params map[string]any, handleID string) ValueType {
	switch handleID {
	case HandleNext, HandleTrue, HandleFalse, HandleLoop, HandleDone, "":
		return TypeControl
	}

	switch kind {
	case workflow.KindConstValue, workflow.KindVarDefine, workflow.KindVarSet:
		if handleID == "value" {
			return typedValueType(kind, params)
		}
	case workflow.KindVarMath:
		if handleID == "result" {
			return TypeNumber
		}
	}
	return TypeAny
}

func typedValueType(kind workflow.Kind, params map[string]any) ValueType {
	selected, _ := paramOrDefault(kind, params, "valueType").(string)
	switch selected {
	case "number":
		return TypeNumber
	case "string":
		return TypeString
	case "json":
		return TypeJSON
	default:
		// Booleans (and anything unrecognized) are wired as the wildcard.
		return TypeAny
	}
}

func paramOrDefault(kind workflow.Kind, params map[string]any, key string) any {
	if params != nil {
		if v, ok := params[key]; ok {
			return v
		}
	}
	return catalog.Get(kind).Defaults[key]
}

// TargetType resolves the value type of an input handle. The flow input is
// control; a parameter handle resolves from its field's declared type.
func TargetType(kind workflow.Kind, handleID string) ValueType {
	if handleID == HandleIn || handleID == "" {
		return TypeControl
	}
	key, ok := ParamKey(handleID)
	if !ok {
		return TypeAny
	}
	for _, f := range catalog.Get(kind).Fields {
		if f.Key != key {
			continue
		}
		switch f.Type {
		case catalog.FieldNumber:
			return TypeNumber
		case catalog.FieldJSON:
			return TypeJSON
		default:
			return TypeString
		}
	}
	return TypeAny
}

// Compatible reports whether two handle types may be wired together.
// Control never mixes with value types; any is a universal value-type
// wildcard but never substitutes for control.
func Compatible(a, b ValueType) bool {
	if a == b {
		return true
	}
	if a == TypeControl || b == TypeControl {
		return false
	}
	return a == TypeAny || b == TypeAny
}

// IsControlFlowEdge reports whether an edge with the given normalized
// handles carries control flow rather than a parameter value.
func IsControlFlowEdge(sourceHandle, targetHandle string) bool {
	if IsParamHandle(sourceHandle) || IsParamHandle(targetHandle) {
		return false
	}
	switch sourceHandle {
	case "", HandleNext, HandleTrue, HandleFalse, HandleLoop, HandleDone:
	default:
		return false
	}
	return targetHandle == "" || targetHandle == HandleIn
}
