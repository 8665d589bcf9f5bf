package editor

import workflow "github.com/caojiachen1/CommandFlow-rs-sub000"

// historyDepth bounds both the past and future stacks. The oldest snapshot
// is dropped when the bound is exceeded.
const historyDepth = 100

type snapshot struct {
	nodes []workflow.Node
	edges []workflow.Edge
}

// history holds the bounded undo/redo stacks. Snapshots are independent
// deep copies of the node/edge state.
type history struct {
	past   []snapshot
	future []snapshot
}

func (h *history) record(s snapshot) {
	h.past = push(h.past, s)
	h.future = nil
}

func (h *history) undo(current snapshot) (snapshot, bool) {
	if len(h.past) == 0 {
		return snapshot{}, false
	}
	top := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = push(h.future, current)
	return top, true
}

func (h *history) redo(current snapshot) (snapshot, bool) {
	if len(h.future) == 0 {
		return snapshot{}, false
	}
	top := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = push(h.past, current)
	return top, true
}

func push(stack []snapshot, s snapshot) []snapshot {
	stack = append(stack, s)
	if len(stack) > historyDepth {
		copy(stack, stack[1:])
		stack = stack[:historyDepth]
	}
	return stack
}
