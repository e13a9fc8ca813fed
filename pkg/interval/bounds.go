// Package interval defines the core temporal annotation primitives used by
// annotcore: time bounds, payload-bearing intervals, sorted interval sets
// with overlap queries, named channels grouped into per-video blocks, and
// the reversible action pairs that drive editing.
package interval

import (
	"fmt"
	"math"
)

// Bounds is an immutable time range [T1, T2] in seconds. T1 == T2 denotes a
// point, used for playhead containment queries.
type Bounds struct {
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
}

// InvalidRangeError reports a bounds construction with a reversed, negative,
// or non-finite range. Construction fails fast; values are never clamped.
type InvalidRangeError struct {
	T1     float64
	T2     float64
	Reason string
}

func (e InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid bounds [%v, %v]: %s", e.T1, e.T2, e.Reason)
}

// NewBounds constructs bounds spanning [t1, t2].
func NewBounds(t1, t2 float64) (Bounds, error) {
	switch {
	case math.IsNaN(t1) || math.IsNaN(t2) || math.IsInf(t1, 0) || math.IsInf(t2, 0):
		return Bounds{}, InvalidRangeError{T1: t1, T2: t2, Reason: "endpoints must be finite"}
	case t1 < 0 || t2 < 0:
		return Bounds{}, InvalidRangeError{T1: t1, T2: t2, Reason: "endpoints must be non-negative"}
	case t1 > t2:
		return Bounds{}, InvalidRangeError{T1: t1, T2: t2, Reason: "start after end"}
	}
	return Bounds{T1: t1, T2: t2}, nil
}

// NewPoint constructs degenerate bounds at a single instant.
func NewPoint(t float64) (Bounds, error) {
	return NewBounds(t, t)
}

// Span returns the duration T2 - T1, always non-negative.
func (b Bounds) Span() float64 {
	return b.T2 - b.T1
}

// ContainsPoint reports whether p falls within the closed range
// [T1, T2]. This is the playhead-containment predicate: both endpoints
// are inclusive.
func (b Bounds) ContainsPoint(p float64) bool {
	return b.T1 <= p && p <= b.T2
}

// Intersects reports whether the window w overlaps b under half-open
// semantics (w.T2 > b.T1 && w.T1 < b.T2). This is the visible-window
// clipping predicate; an interval touching the window edge only is not a
// hit. Deliberately distinct from ContainsPoint - the two predicates serve
// different query shapes and must not be conflated.
func (b Bounds) Intersects(w Bounds) bool {
	return w.T2 > b.T1 && w.T1 < b.T2
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%g, %g]", b.T1, b.T2)
}
