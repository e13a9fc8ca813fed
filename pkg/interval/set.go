package interval

import "sort"

// Set is an ordered multiset of intervals sorted ascending by start time,
// stable on ties. Multiple intervals may share identical bounds; removal is
// by identity. A Set is not safe for concurrent mutation - it follows the
// single-writer, many-logical-readers discipline of the editing layer.
type Set struct {
	items []*Interval
	gen   uint64
}

// NewSet constructs a set from the given intervals, sorting them once.
func NewSet(items ...*Interval) *Set {
	s := &Set{items: make([]*Interval, len(items))}
	copy(s.items, items)
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].bounds.T1 < s.items[j].bounds.T1
	})
	return s
}

// Len returns the number of intervals.
func (s *Set) Len() int { return len(s.items) }

// Generation returns a counter incremented by every structural mutation and
// by Touch. Rendering consumers poll it once per frame to decide whether to
// re-observe the set instead of tracking per-field changes.
func (s *Set) Generation() uint64 { return s.gen }

// insertAt locates the first index whose start time is strictly greater
// than t1, which keeps insertion stable for ties.
func (s *Set) insertAt(t1 float64) int {
	return sort.Search(len(s.items), func(i int) bool {
		return s.items[i].bounds.T1 > t1
	})
}

// Add inserts the interval preserving sort order. It never fails;
// duplicate bounds are permitted.
func (s *Set) Add(iv *Interval) {
	i := s.insertAt(iv.bounds.T1)
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = iv
	s.gen++
}

// Remove deletes the first interval matching by identity. Removing an
// absent interval is a defined no-op, not an error: the editing layer
// cycles the same draft interval out and back in every frame and must not
// care whether the previous cycle completed.
func (s *Set) Remove(iv *Interval) {
	for i, cur := range s.items {
		if cur.id == iv.id {
			copy(s.items[i:], s.items[i+1:])
			s.items[len(s.items)-1] = nil
			s.items = s.items[:len(s.items)-1]
			s.gen++
			return
		}
	}
}

// Contains reports whether an interval with the given identity is present.
func (s *Set) Contains(id uint64) bool {
	for _, cur := range s.items {
		if cur.id == id {
			return true
		}
	}
	return false
}

// Touch bumps the generation counter without changing membership. It is the
// formalized replacement for the remove-then-re-add idiom used to force
// dependents to re-observe an in-progress interval.
func (s *Set) Touch(iv *Interval) {
	if iv == nil || !s.Contains(iv.id) {
		return
	}
	s.gen++
}

// Slice returns the intervals in sort order as a snapshot copy. Subsequent
// mutation of the set does not affect a previously returned slice.
func (s *Set) Slice() []*Interval {
	out := make([]*Interval, len(s.items))
	copy(out, s.items)
	return out
}

// Arbitrary returns the first interval in sort order, or nil when the set
// is empty. Deterministic for a given set state; used only for
// bootstrapping defaults such as an example color or earliest time.
func (s *Set) Arbitrary() *Interval {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[0]
}

// AtTime returns a new set holding every interval overlapping b under
// closed-interval semantics: an interval whose end equals the query instant
// is a hit. Callers typically pass point bounds built from the playhead
// time. The scan binary-searches the first index starting after b.T2 and
// walks only the candidates before it, so intervals starting after the
// query never get re-tested on every time-step.
func (s *Set) AtTime(b Bounds) *Set {
	cut := s.insertAt(b.T2)
	out := &Set{}
	for _, iv := range s.items[:cut] {
		if iv.bounds.T2 >= b.T1 {
			out.items = append(out.items, iv)
		}
	}
	return out
}

// Overlapping returns a new set holding every interval intersecting the
// window b under half-open semantics. This is the visible-window clipping
// query used by pan/zoom rendering; it deliberately differs from AtTime's
// boundary-inclusive predicate.
func (s *Set) Overlapping(b Bounds) *Set {
	cut := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].bounds.T1 >= b.T2
	})
	out := &Set{}
	for _, iv := range s.items[:cut] {
		if iv.bounds.Intersects(b) {
			out.items = append(out.items, iv)
		}
	}
	return out
}

// Union merges two sets into a new sorted set containing all members of
// both. Multiset semantics: no de-duplication, so the result's length is
// always the sum of the inputs'. Implemented as a single merge pass over
// the two sorted sequences.
func (s *Set) Union(other *Set) *Set {
	merged := make([]*Interval, 0, len(s.items)+len(other.items))
	i, j := 0, 0
	for i < len(s.items) && j < len(other.items) {
		if other.items[j].bounds.T1 < s.items[i].bounds.T1 {
			merged = append(merged, other.items[j])
			j++
		} else {
			merged = append(merged, s.items[i])
			i++
		}
	}
	merged = append(merged, s.items[i:]...)
	merged = append(merged, other.items[j:]...)
	return &Set{items: merged}
}

// Clone deep-copies the set, preserving interval identities. Stores use it
// to hand out snapshots that cannot alias live editing state.
func (s *Set) Clone() *Set {
	out := &Set{items: make([]*Interval, len(s.items)), gen: s.gen}
	for i, iv := range s.items {
		out.items[i] = iv.Clone()
	}
	return out
}
