// Package catalog is the static registry of node kinds: display metadata,
// editable parameter fields and default parameter values. It is pure data
// and is the single source of truth for both the port model and the
// parameter-editing UI.
package catalog

import (
	"fmt"
	"sort"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
)

// FieldType is the declared type of an editable parameter field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldSelect  FieldType = "select"
	FieldJSON    FieldType = "json"
	FieldText    FieldType = "text"
)

// Field declares one editable parameter of a node kind.
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Min         float64   `json:"min,omitempty"`
	Max         float64   `json:"max,omitempty"`
	Step        float64   `json:"step,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Default     any       `json:"default"`
}

// Meta is the catalog entry for a node kind.
type Meta struct {
	Kind        workflow.Kind  `json:"kind"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Fields      []Field        `json:"fields"`
	Defaults    map[string]any `json:"defaults"`
}

// Get returns the catalog entry for a kind. Unknown kinds are a programming
// error, not a runtime condition, and panic.
func Get(kind workflow.Kind) Meta {
	meta, ok := registry[kind]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown node kind %q", kind))
	}
	return meta
}

// Has reports whether a kind is declared in the catalog.
func Has(kind workflow.Kind) bool {
	_, ok := registry[kind]
	return ok
}

// Kinds returns the closed set of declared kinds, sorted.
func Kinds() []workflow.Kind {
	kinds := make([]workflow.Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// DefaultParams returns a fresh parameter mapping seeded with the defaults
// of every declared field of the kind.
func DefaultParams(kind workflow.Kind) map[string]any {
	return workflow.CloneParams(Get(kind).Defaults)
}

var registry map[workflow.Kind]Meta

func register(kind workflow.Kind, label, description string, fields ...Field) {
	defaults := make(map[string]any, len(fields))
	for _, f := range fields {
		defaults[f.Key] = f.Default
	}
	registry[kind] = Meta{
		Kind:        kind,
		Label:       label,
		Description: description,
		Fields:      fields,
		Defaults:    defaults,
	}
}

// typedValueFields declares the selector-plus-subfield group used by nodes
// that carry a single typed value (constValue, varDefine, varSet and the
// varMath operand). The <base>Type selector decides which sub-field is read.
func typedValueFields(base string) []Field {
	return []Field{
		{Key: base + "Type", Label: "Value type", Type: FieldSelect, Options: []string{"string", "number", "boolean", "json"}, Default: "string"},
		{Key: base + "String", Label: "String value", Type: FieldString, Default: ""},
		{Key: base + "Number", Label: "Number value", Type: FieldNumber, Default: float64(0)},
		{Key: base + "Boolean", Label: "Boolean value", Type: FieldSelect, Options: []string{"true", "false"}, Default: "false"},
		{Key: base + "Json", Label: "JSON value", Type: FieldJSON, Default: "null"},
	}
}

// comparisonFields declares the left/operator/right group shared by
// condition and whileLoop nodes. Each operand is either a variable lookup
// or a literal.
func comparisonFields() []Field {
	return []Field{
		{Key: "leftType", Label: "Left operand", Type: FieldSelect, Options: []string{"var", "literal"}, Default: "var"},
		{Key: "left", Label: "Left value", Type: FieldString, Placeholder: "variable name or literal", Default: ""},
		{Key: "operator", Label: "Operator", Type: FieldSelect, Options: []string{"==", "!=", ">", ">=", "<", "<="}, Default: "=="},
		{Key: "rightType", Label: "Right operand", Type: FieldSelect, Options: []string{"var", "literal"}, Default: "literal"},
		{Key: "right", Label: "Right value", Type: FieldString, Placeholder: "variable name or literal", Default: ""},
	}
}

func withFields(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func init() {
	registry = make(map[workflow.Kind]Meta)

	// Triggers
	register(workflow.KindHotkeyTrigger, "Hotkey Trigger", "Starts the workflow when a global hotkey is pressed.",
		Field{Key: "hotkey", Label: "Hotkey", Type: FieldString, Default: "Ctrl+Shift+R"},
		Field{Key: "timeoutMs", Label: "Timeout (ms)", Type: FieldNumber, Min: 0, Default: float64(30000)},
		Field{Key: "pollMs", Label: "Poll interval (ms)", Type: FieldNumber, Min: 1, Default: float64(50)},
	)
	register(workflow.KindTimerTrigger, "Timer Trigger", "Starts the workflow after a fixed interval.",
		Field{Key: "intervalMs", Label: "Interval (ms)", Type: FieldNumber, Min: 0, Default: float64(1000)},
	)
	register(workflow.KindManualTrigger, "Manual Trigger", "Starts the workflow when run manually.")
	register(workflow.KindWindowTrigger, "Window Trigger", "Waits for a window whose title matches before starting.",
		Field{Key: "title", Label: "Window title", Type: FieldString, Default: ""},
		Field{Key: "matchMode", Label: "Match mode", Type: FieldSelect, Options: []string{"contains", "exact", "prefix"}, Default: "contains"},
		Field{Key: "timeoutMs", Label: "Timeout (ms)", Type: FieldNumber, Min: 0, Default: float64(30000)},
		Field{Key: "pollMs", Label: "Poll interval (ms)", Type: FieldNumber, Min: 1, Default: float64(250)},
	)

	// Mouse
	register(workflow.KindMouseClick, "Mouse Click", "Clicks at a screen coordinate.",
		Field{Key: "x", Label: "X", Type: FieldNumber, Default: float64(0)},
		Field{Key: "y", Label: "Y", Type: FieldNumber, Default: float64(0)},
		Field{Key: "times", Label: "Click count", Type: FieldNumber, Min: 1, Default: float64(1)},
	)
	register(workflow.KindMouseMove, "Mouse Move", "Moves the cursor to a screen coordinate.",
		Field{Key: "x", Label: "X", Type: FieldNumber, Default: float64(0)},
		Field{Key: "y", Label: "Y", Type: FieldNumber, Default: float64(0)},
	)
	register(workflow.KindMouseDrag, "Mouse Drag", "Drags from one coordinate to another.",
		Field{Key: "fromX", Label: "From X", Type: FieldNumber, Default: float64(0)},
		Field{Key: "fromY", Label: "From Y", Type: FieldNumber, Default: float64(0)},
		Field{Key: "toX", Label: "To X", Type: FieldNumber, Default: float64(0)},
		Field{Key: "toY", Label: "To Y", Type: FieldNumber, Default: float64(0)},
	)
	register(workflow.KindMouseWheel, "Mouse Wheel", "Scrolls the wheel vertically.",
		Field{Key: "vertical", Label: "Vertical amount", Type: FieldNumber, Default: float64(-1)},
	)
	register(workflow.KindMouseDown, "Mouse Down", "Presses and holds a mouse button.",
		Field{Key: "x", Label: "X", Type: FieldNumber, Default: float64(0)},
		Field{Key: "y", Label: "Y", Type: FieldNumber, Default: float64(0)},
		Field{Key: "button", Label: "Button", Type: FieldSelect, Options: []string{"left", "right", "middle"}, Default: "left"},
	)
	register(workflow.KindMouseUp, "Mouse Up", "Releases a held mouse button.",
		Field{Key: "x", Label: "X", Type: FieldNumber, Default: float64(0)},
		Field{Key: "y", Label: "Y", Type: FieldNumber, Default: float64(0)},
		Field{Key: "button", Label: "Button", Type: FieldSelect, Options: []string{"left", "right", "middle"}, Default: "left"},
	)

	// Keyboard
	register(workflow.KindKeyboardKey, "Key Press", "Taps a single key.",
		Field{Key: "key", Label: "Key", Type: FieldString, Default: "Enter"},
	)
	register(workflow.KindKeyboardInput, "Type Text", "Types a text string. {{variable}} templates are expanded.",
		Field{Key: "text", Label: "Text", Type: FieldText, Default: ""},
	)
	register(workflow.KindKeyboardDown, "Key Down", "Presses and holds a key, optionally simulating auto-repeat.",
		Field{Key: "key", Label: "Key", Type: FieldString, Default: "Shift"},
		Field{Key: "simulateRepeat", Label: "Simulate repeat", Type: FieldBoolean, Default: false},
		Field{Key: "repeatCount", Label: "Repeat count", Type: FieldNumber, Min: 1, Default: float64(8)},
		Field{Key: "repeatIntervalMs", Label: "Repeat interval (ms)", Type: FieldNumber, Min: 1, Default: float64(35)},
	)
	register(workflow.KindKeyboardUp, "Key Up", "Releases a held key.",
		Field{Key: "key", Label: "Key", Type: FieldString, Default: "Shift"},
	)
	register(workflow.KindShortcut, "Shortcut", "Presses a key with modifiers.",
		Field{Key: "key", Label: "Key", Type: FieldString, Default: "S"},
		Field{Key: "modifiers", Label: "Modifiers", Type: FieldJSON, Default: `["Ctrl"]`},
	)

	// Screen / window
	register(workflow.KindScreenshot, "Screenshot", "Captures the screen or a region.",
		Field{Key: "fullscreen", Label: "Full screen", Type: FieldBoolean, Default: false},
		Field{Key: "width", Label: "Width", Type: FieldNumber, Min: 1, Default: float64(320)},
		Field{Key: "height", Label: "Height", Type: FieldNumber, Min: 1, Default: float64(240)},
		Field{Key: "saveDir", Label: "Save directory", Type: FieldString, Default: ""},
		Field{Key: "fileName", Label: "File name", Type: FieldString, Default: ""},
	)
	register(workflow.KindGuiAgent, "GUI Agent", "Asks a vision model to perform one UI action from a screenshot.",
		Field{Key: "baseUrl", Label: "API base URL", Type: FieldString, Default: ""},
		Field{Key: "apiKey", Label: "API key", Type: FieldString, Default: ""},
		Field{Key: "model", Label: "Model", Type: FieldString, Default: ""},
		Field{Key: "instruction", Label: "Instruction", Type: FieldText, Default: ""},
	)
	register(workflow.KindWindowActivate, "Activate Window", "Brings a window to the foreground by title or shortcut.",
		Field{Key: "switchMode", Label: "Switch mode", Type: FieldSelect, Options: []string{"title", "shortcut"}, Default: "title"},
		Field{Key: "title", Label: "Window title", Type: FieldString, Default: ""},
		Field{Key: "shortcut", Label: "Shortcut", Type: FieldString, Default: "Alt+Tab"},
		Field{Key: "shortcutTimes", Label: "Shortcut presses", Type: FieldNumber, Min: 1, Default: float64(1)},
		Field{Key: "shortcutIntervalMs", Label: "Press interval (ms)", Type: FieldNumber, Min: 1, Default: float64(120)},
	)

	// Files
	register(workflow.KindFileCopy, "Copy File", "Copies a file or directory.",
		Field{Key: "sourcePath", Label: "Source path", Type: FieldString, Default: ""},
		Field{Key: "targetPath", Label: "Target path", Type: FieldString, Default: ""},
		Field{Key: "overwrite", Label: "Overwrite", Type: FieldBoolean, Default: false},
		Field{Key: "recursive", Label: "Recursive", Type: FieldBoolean, Default: true},
	)
	register(workflow.KindFileMove, "Move File", "Moves or renames a file or directory.",
		Field{Key: "sourcePath", Label: "Source path", Type: FieldString, Default: ""},
		Field{Key: "targetPath", Label: "Target path", Type: FieldString, Default: ""},
		Field{Key: "overwrite", Label: "Overwrite", Type: FieldBoolean, Default: false},
	)
	register(workflow.KindFileDelete, "Delete File", "Deletes a file or directory.",
		Field{Key: "path", Label: "Path", Type: FieldString, Default: ""},
		Field{Key: "recursive", Label: "Recursive", Type: FieldBoolean, Default: true},
	)
	register(workflow.KindFileReadText, "Read Text File", "Reads a text file into a variable.",
		Field{Key: "path", Label: "Path", Type: FieldString, Default: ""},
		Field{Key: "outputVar", Label: "Output variable", Type: FieldString, Default: "fileText"},
	)
	register(workflow.KindFileWriteText, "Write Text File", "Writes or appends text to a file.",
		Field{Key: "path", Label: "Path", Type: FieldString, Default: ""},
		Field{Key: "text", Label: "Text", Type: FieldText, Default: ""},
		Field{Key: "append", Label: "Append", Type: FieldBoolean, Default: false},
		Field{Key: "createParentDir", Label: "Create parent directory", Type: FieldBoolean, Default: true},
	)

	// Clipboard
	register(workflow.KindClipboardRead, "Read Clipboard", "Reads clipboard text into a variable.",
		Field{Key: "outputVar", Label: "Output variable", Type: FieldString, Default: "clipboardText"},
	)
	register(workflow.KindClipboardWrite, "Write Clipboard", "Writes text to the clipboard.",
		Field{Key: "text", Label: "Text", Type: FieldText, Default: ""},
	)

	// Processes
	register(workflow.KindRunCommand, "Run Command", "Runs a shell command.",
		Field{Key: "command", Label: "Command", Type: FieldText, Default: ""},
		Field{Key: "shell", Label: "Use shell", Type: FieldBoolean, Default: true},
	)
	register(workflow.KindPythonCode, "Python Code", "Runs an inline Python snippet.",
		Field{Key: "code", Label: "Code", Type: FieldText, Default: ""},
	)
	register(workflow.KindShowMessage, "Show Message", "Shows a message dialog.",
		Field{Key: "title", Label: "Title", Type: FieldString, Default: "CommandFlow"},
		Field{Key: "message", Label: "Message", Type: FieldText, Default: ""},
		Field{Key: "level", Label: "Level", Type: FieldSelect, Options: []string{"info", "warn", "error"}, Default: "info"},
	)
	register(workflow.KindDelay, "Delay", "Waits a fixed duration.",
		Field{Key: "ms", Label: "Duration (ms)", Type: FieldNumber, Min: 0, Default: float64(100)},
	)

	// Control flow
	register(workflow.KindCondition, "Condition", "Branches on a comparison between two operands.",
		comparisonFields()...,
	)
	register(workflow.KindLoop, "Loop", "Repeats the loop branch a fixed number of times.",
		Field{Key: "times", Label: "Iterations", Type: FieldNumber, Min: 0, Default: float64(1)},
	)
	register(workflow.KindWhileLoop, "While Loop", "Repeats the loop branch while a comparison holds.",
		withFields(comparisonFields(), []Field{
			{Key: "maxIterations", Label: "Max iterations", Type: FieldNumber, Min: 1, Default: float64(1000)},
		})...,
	)
	register(workflow.KindErrorHandler, "Error Handler", "Catches downstream failures and continues.",
		Field{Key: "continueOnError", Label: "Continue on error", Type: FieldBoolean, Default: true},
	)
	register(workflow.KindImageMatch, "Image Match", "Waits for a template image on screen and branches on the result.",
		Field{Key: "templatePath", Label: "Template path", Type: FieldString, Default: ""},
		Field{Key: "sourcePath", Label: "Static source path", Type: FieldString, Default: ""},
		Field{Key: "threshold", Label: "Threshold", Type: FieldNumber, Min: 0, Max: 1, Step: 0.01, Default: float64(0.99)},
		Field{Key: "timeoutMs", Label: "Timeout (ms)", Type: FieldNumber, Min: 0, Default: float64(10000)},
		Field{Key: "pollMs", Label: "Poll interval (ms)", Type: FieldNumber, Min: 1, Default: float64(16)},
		Field{Key: "clickOnMatch", Label: "Click on match", Type: FieldBoolean, Default: false},
		Field{Key: "clickTimes", Label: "Click count", Type: FieldNumber, Min: 1, Default: float64(1)},
		Field{Key: "confirmFrames", Label: "Confirm frames", Type: FieldNumber, Min: 1, Default: float64(2)},
	)

	// Variables
	register(workflow.KindVarDefine, "Define Variable", "Defines a variable if it does not exist yet.",
		withFields([]Field{
			{Key: "name", Label: "Name", Type: FieldString, Default: ""},
		}, typedValueFields("value"))...,
	)
	register(workflow.KindVarSet, "Set Variable", "Sets a variable, overwriting any previous value.",
		withFields([]Field{
			{Key: "name", Label: "Name", Type: FieldString, Default: ""},
		}, typedValueFields("value"))...,
	)
	register(workflow.KindVarGet, "Read Variable", "Outputs the current value of a variable.",
		Field{Key: "name", Label: "Name", Type: FieldString, Default: ""},
	)
	register(workflow.KindVarMath, "Variable Math", "Applies a numeric operation to a variable.",
		withFields([]Field{
			{Key: "name", Label: "Name", Type: FieldString, Default: ""},
			{Key: "operation", Label: "Operation", Type: FieldSelect, Options: []string{
				"add", "sub", "mul", "div", "mod", "pow", "min", "max",
				"eq", "ne", "gt", "ge", "lt", "le", "land", "lor",
				"neg", "abs", "floor", "ceil", "round", "sqrt", "set",
			}, Default: "add"},
			{Key: "assignToVariable", Label: "Assign result", Type: FieldBoolean, Default: true},
		}, typedValueFields("operand"))...,
	)
	register(workflow.KindConstValue, "Constant", "Outputs a constant typed value.",
		typedValueFields("value")...,
	)
}
