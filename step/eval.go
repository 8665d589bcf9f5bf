package step

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
	"github.com/caojiachen1/CommandFlow-rs-sub000/catalog"
)

// paramValue reads a node parameter, falling back to the catalog default
// when the key is absent. Missing keys are never invalid.
func paramValue(n *workflow.Node, key string) any {
	if n.Params != nil {
		if v, ok := n.Params[key]; ok {
			return v
		}
	}
	if catalog.Has(n.Kind) {
		return catalog.Get(n.Kind).Defaults[key]
	}
	return nil
}

func paramString(n *workflow.Node, key string) string {
	switch v := paramValue(n, key).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func paramFloat(n *workflow.Node, key string) float64 {
	f, _ := asFloat(paramValue(n, key))
	return f
}

func paramInt(n *workflow.Node, key string) int {
	return int(paramFloat(n, key))
}

func paramBool(n *workflow.Node, key string) bool {
	switch v := paramValue(n, key).(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		f, ok := asFloat(v)
		return ok && f != 0
	}
}

// typedParamValue resolves a typed-value field group: the <base>Type
// selector decides which sub-field carries the value.
func typedParamValue(n *workflow.Node, base string) any {
	selected := paramString(n, base+"Type")
	switch selected {
	case "string":
		return paramString(n, base+"String")
	case "number":
		return paramFloat(n, base+"Number")
	case "boolean":
		return strings.EqualFold(paramString(n, base+"Boolean"), "true")
	case "json":
		raw := paramString(n, base+"Json")
		var out any
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil
		}
		return out
	default:
		return paramValue(n, base)
	}
}

// evalCondition evaluates the left OP right comparison of condition and
// whileLoop nodes against the session's variable table. Ordering operators
// coerce both sides to numbers; equality compares numerically when both
// sides are numeric and as raw values otherwise.
func evalCondition(n *workflow.Node, vars map[string]any) bool {
	left := resolveOperand(paramString(n, "leftType"), paramString(n, "left"), vars)
	right := resolveOperand(paramString(n, "rightType"), paramString(n, "right"), vars)

	switch paramString(n, "operator") {
	case "==":
		return valuesEqual(left, right)
	case "!=":
		return !valuesEqual(left, right)
	case ">":
		return coerceFloat(left) > coerceFloat(right)
	case ">=":
		return coerceFloat(left) >= coerceFloat(right)
	case "<":
		return coerceFloat(left) < coerceFloat(right)
	case "<=":
		return coerceFloat(left) <= coerceFloat(right)
	default:
		return false
	}
}

// resolveOperand turns a raw operand into a value: a variable lookup, or a
// literal parsed as number, boolean or string.
func resolveOperand(operandType, raw string, vars map[string]any) any {
	if operandType == "var" {
		return vars[raw]
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.EqualFold(raw, "true") {
		return true
	}
	if strings.EqualFold(raw, "false") {
		return false
	}
	return raw
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// coerceFloat coerces for ordering operators; anything non-numeric is 0.
func coerceFloat(v any) float64 {
	f, _ := asFloat(v)
	return f
}

func valuesEqual(a, b any) bool {
	fa, oka := asFloat(a)
	fb, okb := asFloat(b)
	if oka && okb {
		return math.Abs(fa-fb) < 1e-9
	}
	return reflect.DeepEqual(a, b)
}

// applyVarMath runs a varMath node's numeric operation against the variable
// table and returns the result. Division-family operations by zero and
// non-finite results are session faults.
func applyVarMath(n *workflow.Node, vars map[string]any) (float64, error) {
	name := strings.TrimSpace(paramString(n, "name"))
	if name == "" {
		return 0, fmt.Errorf("step: node %q: varMath variable name is empty", n.ID)
	}

	operand := coerceFloat(typedParamValue(n, "operand"))
	current := 0.0
	if v, ok := vars[name]; ok {
		current = coerceFloat(v)
	}

	toNum := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}
	truthy := func(f float64) bool { return math.Abs(f) > 1e-9 }

	var result float64
	switch op := strings.ToLower(paramString(n, "operation")); op {
	case "add", "+":
		result = current + operand
	case "sub", "-":
		result = current - operand
	case "mul", "*":
		result = current * operand
	case "div", "/":
		if operand == 0 {
			return 0, fmt.Errorf("step: node %q: division by zero", n.ID)
		}
		result = current / operand
	case "mod", "%":
		if operand == 0 {
			return 0, fmt.Errorf("step: node %q: modulo by zero", n.ID)
		}
		result = math.Mod(math.Mod(current, operand)+operand, operand)
	case "pow":
		result = math.Pow(current, operand)
	case "min":
		result = math.Min(current, operand)
	case "max":
		result = math.Max(current, operand)
	case "eq", "==":
		result = toNum(math.Abs(current-operand) < 1e-9)
	case "ne", "!=":
		result = toNum(math.Abs(current-operand) >= 1e-9)
	case "gt", ">":
		result = toNum(current > operand)
	case "ge", ">=":
		result = toNum(current >= operand)
	case "lt", "<":
		result = toNum(current < operand)
	case "le", "<=":
		result = toNum(current <= operand)
	case "land", "&&":
		result = toNum(truthy(current) && truthy(operand))
	case "lor", "||":
		result = toNum(truthy(current) || truthy(operand))
	case "neg":
		result = -current
	case "abs":
		result = math.Abs(current)
	case "floor":
		result = math.Floor(current)
	case "ceil":
		result = math.Ceil(current)
	case "round":
		result = math.Round(current)
	case "sqrt":
		result = math.Sqrt(current)
	case "set", "=":
		result = operand
	default:
		return 0, fmt.Errorf("step: node %q: unsupported varMath operation %q", n.ID, op)
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("step: node %q: varMath result is not finite", n.ID)
	}

	if paramBool(n, "assignToVariable") {
		vars[name] = result
	}
	return result, nil
}
