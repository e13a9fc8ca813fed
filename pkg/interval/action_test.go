package interval

import "testing"

func sequenceIDs(s *Set) []uint64 {
	items := s.Slice()
	out := make([]uint64, len(items))
	for i, iv := range items {
		out[i] = iv.ID()
	}
	return out
}

func equalIDs(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddActionDoUndoRestoresSequence(t *testing.T) {
	s := NewSet(
		New(Bounds{T1: 0, T2: 1}, Payload{}),
		New(Bounds{T1: 4, T2: 6}, Payload{}),
	)
	before := sequenceIDs(s)
	act := AddAction(s, New(Bounds{T1: 2, T2: 3}, Payload{}))

	act.Do()
	if s.Len() != 3 {
		t.Fatalf("do must insert")
	}
	act.Undo()
	if !equalIDs(sequenceIDs(s), before) {
		t.Fatalf("undo must restore the original ordered sequence")
	}
}

func TestAddActionIsIdempotent(t *testing.T) {
	s := NewSet()
	act := AddAction(s, New(Bounds{T1: 1, T2: 2}, Payload{}))
	act.Do()
	act.Do()
	if s.Len() != 1 {
		t.Fatalf("double Do must not duplicate, len = %d", s.Len())
	}
	act.Undo()
	act.Undo()
	if s.Len() != 0 {
		t.Fatalf("double Undo must be a no-op")
	}
}

func TestRemoveActionDoUndo(t *testing.T) {
	target := New(Bounds{T1: 2, T2: 3}, Payload{})
	s := NewSet(New(Bounds{T1: 0, T2: 1}, Payload{}), target, New(Bounds{T1: 5, T2: 6}, Payload{}))
	before := sequenceIDs(s)

	act := RemoveAction(s, target)
	act.Do()
	if s.Contains(target.ID()) {
		t.Fatalf("do must remove")
	}
	act.Undo()
	if !equalIDs(sequenceIDs(s), before) {
		t.Fatalf("undo must restore membership and order")
	}
}

func TestTouchActionBumpsBothWays(t *testing.T) {
	iv := New(Bounds{T1: 1, T2: 2}, Payload{})
	s := NewSet(iv)
	act := TouchAction(s, iv)
	g := s.Generation()
	act.Do()
	act.Undo()
	if s.Generation() != g+2 {
		t.Fatalf("touch action must bump generation in both directions")
	}
	if s.Len() != 1 {
		t.Fatalf("touch action must not change membership")
	}
}
