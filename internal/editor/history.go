// Package editor implements live annotation editing: draft intervals that
// grow with the playhead, and an undo/redo history of reversible actions.
package editor

import (
	"annotcore/pkg/interval"
)

// History is a linear undo/redo stack of reversible actions. Pushing a new
// action clears the redo branch, matching the usual editor model.
type History struct {
	done   []interval.Action
	undone []interval.Action
}

// NewHistory returns an empty history.
func NewHistory() *History { return &History{} }

// Apply runs the action and records it, discarding any redoable branch.
func (h *History) Apply(a interval.Action) {
	a.Do()
	h.done = append(h.done, a)
	h.undone = h.undone[:0]
}

// Undo reverses the most recent action. Returns false when there is
// nothing to undo.
func (h *History) Undo() bool {
	if len(h.done) == 0 {
		return false
	}
	a := h.done[len(h.done)-1]
	h.done = h.done[:len(h.done)-1]
	a.Undo()
	h.undone = append(h.undone, a)
	return true
}

// Redo re-applies the most recently undone action. Returns false when
// there is nothing to redo.
func (h *History) Redo() bool {
	if len(h.undone) == 0 {
		return false
	}
	a := h.undone[len(h.undone)-1]
	h.undone = h.undone[:len(h.undone)-1]
	a.Do()
	h.done = append(h.done, a)
	return true
}

// CanUndo reports whether an action is available to undo.
func (h *History) CanUndo() bool { return len(h.done) > 0 }

// CanRedo reports whether an undone action is available to redo.
func (h *History) CanRedo() bool { return len(h.undone) > 0 }

// Labels returns the labels of applied actions, oldest first. Intended for
// history displays.
func (h *History) Labels() []string {
	out := make([]string, len(h.done))
	for i, a := range h.done {
		out[i] = a.Label()
	}
	return out
}
