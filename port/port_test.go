package port

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
)

func handleIDs(handles []Handle) []string {
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.ID)
	}
	return out
}

func TestSpecForFlowHandles(t *testing.T) {
	t.Run("triggers have no flow input", func(t *testing.T) {
		for _, k := range []workflow.Kind{
			workflow.KindHotkeyTrigger, workflow.KindTimerTrigger,
			workflow.KindManualTrigger, workflow.KindWindowTrigger,
		} {
			assert.NotContains(t, handleIDs(SpecFor(k).Inputs), HandleIn, "kind %q", k)
		}
	})

	t.Run("actions accept unlimited inbound wires", func(t *testing.T) {
		h, ok := FindHandle(workflow.KindShowMessage, In, HandleIn)
		require.True(t, ok)
		assert.Equal(t, 0, h.MaxConnections)
	})

	t.Run("branching nodes expose true and false", func(t *testing.T) {
		for _, k := range []workflow.Kind{workflow.KindCondition, workflow.KindImageMatch} {
			outs := handleIDs(SpecFor(k).Outputs)
			assert.Contains(t, outs, HandleTrue, "kind %q", k)
			assert.Contains(t, outs, HandleFalse, "kind %q", k)
			assert.NotContains(t, outs, HandleNext, "kind %q", k)
		}
	})

	t.Run("loops expose loop and done", func(t *testing.T) {
		for _, k := range []workflow.Kind{workflow.KindLoop, workflow.KindWhileLoop} {
			outs := handleIDs(SpecFor(k).Outputs)
			assert.Contains(t, outs, HandleLoop, "kind %q", k)
			assert.Contains(t, outs, HandleDone, "kind %q", k)
		}
	})

	t.Run("flow outputs carry a single wire", func(t *testing.T) {
		for _, probe := range []struct {
			kind   workflow.Kind
			handle string
		}{
			{workflow.KindManualTrigger, HandleNext},
			{workflow.KindCondition, HandleTrue},
			{workflow.KindLoop, HandleLoop},
			{workflow.KindLoop, HandleDone},
		} {
			h, ok := FindHandle(probe.kind, Out, probe.handle)
			require.True(t, ok, "%v %s", probe.kind, probe.handle)
			assert.Equal(t, 1, h.MaxConnections)
		}
	})

	t.Run("value outputs fan out", func(t *testing.T) {
		h, ok := FindHandle(workflow.KindConstValue, Out, "value")
		require.True(t, ok)
		assert.Equal(t, 0, h.MaxConnections)

		h, ok = FindHandle(workflow.KindVarMath, Out, "result")
		require.True(t, ok)
		assert.Equal(t, 0, h.MaxConnections)
	})

	t.Run("boolean fields get no parameter handle", func(t *testing.T) {
		ins := handleIDs(SpecFor(workflow.KindRunCommand).Inputs)
		assert.Contains(t, ins, ParamHandleID("command"))
		assert.NotContains(t, ins, ParamHandleID("shell"))
	})
}

func TestSpecForIsStable(t *testing.T) {
	a := SpecFor(workflow.KindCondition)
	b := SpecFor(workflow.KindCondition)
	assert.Equal(t, a, b)
}

func TestParamHandleRoundTrip(t *testing.T) {
	id := ParamHandleID("text")
	assert.Equal(t, "param:text:in", id)

	key, ok := ParamKey(id)
	require.True(t, ok)
	assert.Equal(t, "text", key)

	for _, bad := range []string{"", "in", "next", "param::in", "param:text", "text:in"} {
		_, ok := ParamKey(bad)
		assert.False(t, ok, "id %q", bad)
	}
}

func TestNormalize(t *testing.T) {
	t.Run("declared id resolves to itself", func(t *testing.T) {
		h, ok := Normalize(workflow.KindCondition, Out, HandleFalse)
		require.True(t, ok)
		assert.Equal(t, HandleFalse, h)
	})

	t.Run("empty id resolves against a single port", func(t *testing.T) {
		h, ok := Normalize(workflow.KindManualTrigger, Out, "")
		require.True(t, ok)
		assert.Equal(t, HandleNext, h)
	})

	t.Run("empty id resolves to the flow handle among parameter handles", func(t *testing.T) {
		// showMessage declares param inputs next to the flow input; an
		// omitted id still resolves to the flow port.
		h, ok := Normalize(workflow.KindShowMessage, In, "")
		require.True(t, ok)
		assert.Equal(t, HandleIn, h)
	})

	t.Run("empty id prefers the flow output over value outputs", func(t *testing.T) {
		h, ok := Normalize(workflow.KindConstValue, Out, "")
		require.True(t, ok)
		assert.Equal(t, HandleNext, h)
	})

	t.Run("triggers have no input to resolve", func(t *testing.T) {
		_, ok := Normalize(workflow.KindManualTrigger, In, "")
		assert.False(t, ok)
	})

	t.Run("empty id fails against multiple ports", func(t *testing.T) {
		_, ok := Normalize(workflow.KindCondition, Out, "")
		assert.False(t, ok)
	})

	t.Run("unknown id fails against multiple ports", func(t *testing.T) {
		_, ok := Normalize(workflow.KindCondition, Out, "maybe")
		assert.False(t, ok)
	})
}

func TestCompatible(t *testing.T) {
	cases := []struct {
		a, b ValueType
		want bool
	}{
		{TypeControl, TypeControl, true},
		{TypeControl, TypeString, false},
		{TypeControl, TypeAny, false},
		{TypeAny, TypeControl, false},
		{TypeString, TypeString, true},
		{TypeString, TypeNumber, false},
		{TypeAny, TypeNumber, true},
		{TypeJSON, TypeAny, true},
		{TypeAny, TypeAny, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Compatible(c.a, c.b), "%s vs %s", c.a, c.b)
	}
}

func TestSourceType(t *testing.T) {
	t.Run("flow handles are control", func(t *testing.T) {
		for _, h := range []string{HandleNext, HandleTrue, HandleFalse, HandleLoop, HandleDone, ""} {
			assert.Equal(t, TypeControl, SourceType(workflow.KindCondition, nil, h), "handle %q", h)
		}
	})

	t.Run("typed value output follows the selector", func(t *testing.T) {
		assert.Equal(t, TypeString, SourceType(workflow.KindConstValue, nil, "value"))
		assert.Equal(t, TypeNumber, SourceType(workflow.KindConstValue, map[string]any{"valueType": "number"}, "value"))
		assert.Equal(t, TypeJSON, SourceType(workflow.KindVarSet, map[string]any{"valueType": "json"}, "value"))
		assert.Equal(t, TypeAny, SourceType(workflow.KindVarDefine, map[string]any{"valueType": "boolean"}, "value"))
	})

	t.Run("math result is a number", func(t *testing.T) {
		assert.Equal(t, TypeNumber, SourceType(workflow.KindVarMath, nil, "result"))
	})

	t.Run("plain value output is any", func(t *testing.T) {
		assert.Equal(t, TypeAny, SourceType(workflow.KindVarGet, nil, "value"))
	})
}

func TestTargetType(t *testing.T) {
	assert.Equal(t, TypeControl, TargetType(workflow.KindShowMessage, HandleIn))
	assert.Equal(t, TypeControl, TargetType(workflow.KindShowMessage, ""))
	assert.Equal(t, TypeString, TargetType(workflow.KindShowMessage, ParamHandleID("message")))
	assert.Equal(t, TypeNumber, TargetType(workflow.KindDelay, ParamHandleID("ms")))
	assert.Equal(t, TypeJSON, TargetType(workflow.KindShortcut, ParamHandleID("modifiers")))
	assert.Equal(t, TypeAny, TargetType(workflow.KindShowMessage, ParamHandleID("ghost")))
}

func TestIsControlFlowEdge(t *testing.T) {
	assert.True(t, IsControlFlowEdge(HandleNext, HandleIn))
	assert.True(t, IsControlFlowEdge("", ""))
	assert.True(t, IsControlFlowEdge(HandleLoop, HandleIn))
	assert.False(t, IsControlFlowEdge("value", HandleIn))
	assert.False(t, IsControlFlowEdge(HandleNext, ParamHandleID("text")))
	assert.False(t, IsControlFlowEdge("result", ParamHandleID("ms")))
}
