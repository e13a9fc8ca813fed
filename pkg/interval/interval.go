package interval

import (
	"fmt"
	"sync/atomic"
)

var intervalSeq uint64

func nextIntervalID() uint64 {
	return atomic.AddUint64(&intervalSeq, 1)
}

// Interval is one (Bounds, Payload) record. Identity is the monotonically
// assigned id, not value equality: two intervals constructed separately are
// distinct entities even with identical bounds and payload, which is what
// makes identity-based removal meaningful.
type Interval struct {
	id     uint64
	bounds Bounds
	data   Payload
	open   bool
}

// New constructs a committed interval. Bounds and payload are fixed for the
// lifetime of the record.
func New(b Bounds, data Payload) *Interval {
	return &Interval{id: nextIntervalID(), bounds: b, data: data}
}

// NewDraft constructs an open point interval at t1 that is still being
// drawn. Its end may be advanced with ExtendTo until Seal is called.
func NewDraft(t1 float64, data Payload) (*Interval, error) {
	b, err := NewPoint(t1)
	if err != nil {
		return nil, fmt.Errorf("draft interval: %w", err)
	}
	return &Interval{id: nextIntervalID(), bounds: b, data: data, open: true}, nil
}

// ID returns the interval's identity.
func (iv *Interval) ID() uint64 { return iv.id }

// Bounds returns the interval's time extent.
func (iv *Interval) Bounds() Bounds { return iv.bounds }

// Data returns the interval's payload.
func (iv *Interval) Data() Payload { return iv.data }

// Open reports whether the interval is still being drawn.
func (iv *Interval) Open() bool { return iv.open }

// ExtendTo advances the end of an open interval monotonically forward as
// the playhead moves. A target not later than the current end, or a sealed
// interval, makes this a no-op: the call never fails and never shrinks the
// range. T1 is untouched, so a containing set's sort invariant holds.
func (iv *Interval) ExtendTo(t float64) {
	if !iv.open || t <= iv.bounds.T2 {
		return
	}
	iv.bounds.T2 = t
}

// Seal commits the interval; subsequent ExtendTo calls are no-ops.
func (iv *Interval) Seal() { iv.open = false }

// Clone deep-copies the interval, preserving its identity. Used by stores
// that hand out snapshots without sharing mutable payloads.
func (iv *Interval) Clone() *Interval {
	return &Interval{id: iv.id, bounds: iv.bounds, data: ClonePayload(iv.data), open: iv.open}
}

func (iv *Interval) String() string {
	kind := KindTemporal
	if iv.data.Spatial != nil {
		kind = iv.data.Spatial.Kind()
	}
	return fmt.Sprintf("interval#%d %s %s", iv.id, iv.bounds, kind)
}
