package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
)

func condNode(left, operator, right string, leftVar, rightVar bool) *workflow.Node {
	lt, rt := "literal", "literal"
	if leftVar {
		lt = "var"
	}
	if rightVar {
		rt = "var"
	}
	n := node("cond", workflow.KindCondition, map[string]any{
		"leftType": lt, "left": left,
		"operator":  operator,
		"rightType": rt, "right": right,
	})
	return &n
}

func TestEvalCondition(t *testing.T) {
	vars := map[string]any{
		"n":    float64(10),
		"s":    "hello",
		"flag": true,
	}

	cases := []struct {
		name string
		node *workflow.Node
		want bool
	}{
		{"numeric gt", condNode("5", ">", "3", false, false), true},
		{"numeric le", condNode("5", "<=", "3", false, false), false},
		{"numeric eq with epsilon", condNode("0.3", "==", "0.30000000001", false, false), true},
		{"string eq", condNode("hello", "==", "hello", false, false), true},
		{"string ne", condNode("hello", "!=", "world", false, false), true},
		{"var vs literal", condNode("n", ">", "9", true, false), true},
		{"var string eq", condNode("s", "==", "hello", true, false), true},
		{"bool literal", condNode("flag", "==", "true", true, false), true},
		{"missing var is nil", condNode("ghost", "==", "anything", true, false), false},
		{"unknown operator", condNode("1", "~", "1", false, false), false},
		{"non-numeric ordering coerces to zero", condNode("abc", ">", "xyz", false, false), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, evalCondition(c.node, vars))
		})
	}
}

func TestTypedParamValue(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		n := node("n", workflow.KindConstValue, map[string]any{
			"valueType": "string", "valueString": "abc",
		})
		assert.Equal(t, "abc", typedParamValue(&n, "value"))
	})

	t.Run("number", func(t *testing.T) {
		n := node("n", workflow.KindConstValue, map[string]any{
			"valueType": "number", "valueNumber": float64(4.5),
		})
		assert.Equal(t, 4.5, typedParamValue(&n, "value"))
	})

	t.Run("boolean", func(t *testing.T) {
		n := node("n", workflow.KindConstValue, map[string]any{
			"valueType": "boolean", "valueBoolean": "true",
		})
		assert.Equal(t, true, typedParamValue(&n, "value"))
	})

	t.Run("json", func(t *testing.T) {
		n := node("n", workflow.KindConstValue, map[string]any{
			"valueType": "json", "valueJson": `{"a": [1, 2]}`,
		})
		want := map[string]any{"a": []any{float64(1), float64(2)}}
		assert.Equal(t, want, typedParamValue(&n, "value"))
	})

	t.Run("invalid json is nil", func(t *testing.T) {
		n := node("n", workflow.KindConstValue, map[string]any{
			"valueType": "json", "valueJson": `{`,
		})
		assert.Nil(t, typedParamValue(&n, "value"))
	})

	t.Run("catalog default fills missing selector", func(t *testing.T) {
		n := node("n", workflow.KindConstValue, map[string]any{"valueString": "fallback"})
		assert.Equal(t, "fallback", typedParamValue(&n, "value"))
	})
}

func TestApplyVarMath(t *testing.T) {
	run := func(t *testing.T, operation string, current, operand float64) (float64, map[string]any, error) {
		t.Helper()
		vars := map[string]any{"x": current}
		n := node("m", workflow.KindVarMath, map[string]any{
			"name": "x", "operation": operation,
			"operandType": "number", "operandNumber": operand,
		})
		result, err := applyVarMath(&n, vars)
		return result, vars, err
	}

	t.Run("arithmetic", func(t *testing.T) {
		for _, c := range []struct {
			op                     string
			current, operand, want float64
		}{
			{"add", 2, 3, 5},
			{"sub", 2, 3, -1},
			{"mul", 2, 3, 6},
			{"div", 6, 3, 2},
			{"mod", -1, 3, 2}, // euclidean, never negative
			{"pow", 2, 10, 1024},
			{"min", 2, 3, 2},
			{"max", 2, 3, 3},
			{"set", 2, 9, 9},
		} {
			result, vars, err := run(t, c.op, c.current, c.operand)
			require.NoError(t, err, c.op)
			assert.Equal(t, c.want, result, c.op)
			assert.Equal(t, c.want, vars["x"], c.op)
		}
	})

	t.Run("comparisons yield 0 or 1", func(t *testing.T) {
		for _, c := range []struct {
			op   string
			want float64
		}{
			{"eq", 0}, {"ne", 1}, {"gt", 0}, {"ge", 0}, {"lt", 1}, {"le", 1},
		} {
			result, _, err := run(t, c.op, 2, 3)
			require.NoError(t, err, c.op)
			assert.Equal(t, c.want, result, c.op)
		}
	})

	t.Run("unary ignores the operand", func(t *testing.T) {
		for _, c := range []struct {
			op            string
			current, want float64
		}{
			{"neg", 2, -2}, {"abs", -2, 2}, {"floor", 2.7, 2},
			{"ceil", 2.2, 3}, {"round", 2.5, 3}, {"sqrt", 9, 3},
		} {
			result, _, err := run(t, c.op, c.current, 99)
			require.NoError(t, err, c.op)
			assert.Equal(t, c.want, result, c.op)
		}
	})

	t.Run("faults", func(t *testing.T) {
		_, _, err := run(t, "div", 1, 0)
		assert.ErrorContains(t, err, "division by zero")

		_, _, err = run(t, "mod", 1, 0)
		assert.ErrorContains(t, err, "modulo by zero")

		_, _, err = run(t, "sqrt", -1, 0)
		assert.ErrorContains(t, err, "not finite")

		_, _, err = run(t, "teleport", 1, 1)
		assert.ErrorContains(t, err, "unsupported")
	})

	t.Run("empty name is a fault", func(t *testing.T) {
		n := node("m", workflow.KindVarMath, map[string]any{"operation": "add"})
		_, err := applyVarMath(&n, map[string]any{})
		assert.ErrorContains(t, err, "name is empty")
	})

	t.Run("assignToVariable false leaves the table alone", func(t *testing.T) {
		vars := map[string]any{"x": float64(2)}
		n := node("m", workflow.KindVarMath, map[string]any{
			"name": "x", "operation": "add",
			"operandType": "number", "operandNumber": float64(3),
			"assignToVariable": false,
		})
		result, err := applyVarMath(&n, vars)
		require.NoError(t, err)
		assert.Equal(t, float64(5), result)
		assert.Equal(t, float64(2), vars["x"])
	})

	t.Run("undefined variable starts at zero", func(t *testing.T) {
		vars := map[string]any{}
		n := node("m", workflow.KindVarMath, map[string]any{
			"name": "fresh", "operation": "add",
			"operandType": "number", "operandNumber": float64(7),
		})
		result, err := applyVarMath(&n, vars)
		require.NoError(t, err)
		assert.Equal(t, float64(7), result)
		assert.Equal(t, float64(7), vars["fresh"])
	})
}
