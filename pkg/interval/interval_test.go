package interval

import "testing"

func captionAt(t *testing.T, t1, t2 float64, text string) *Interval {
	t.Helper()
	b, err := NewBounds(t1, t2)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	return New(b, Payload{Spatial: Caption{Text: text}})
}

func TestIntervalIdentity(t *testing.T) {
	a := captionAt(t, 0, 1, "cap")
	b := captionAt(t, 0, 1, "cap")
	if a.ID() == b.ID() {
		t.Fatalf("separately constructed intervals must have distinct identities")
	}
	if a.ID() == 0 {
		t.Fatalf("identity must be assigned at construction")
	}
}

func TestDraftExtendTo(t *testing.T) {
	draft, err := NewDraft(3, Payload{Spatial: Temporal{}})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if !draft.Open() {
		t.Fatalf("draft must start open")
	}
	if got := draft.Bounds(); got.T1 != 3 || got.T2 != 3 {
		t.Fatalf("draft must start as a point, got %v", got)
	}

	draft.ExtendTo(4.5)
	if got := draft.Bounds().T2; got != 4.5 {
		t.Fatalf("end = %v, want 4.5", got)
	}
	// Not later than the current end: no-op, never shrinks.
	draft.ExtendTo(4.5)
	draft.ExtendTo(2)
	if got := draft.Bounds().T2; got != 4.5 {
		t.Fatalf("ExtendTo must never shrink, got %v", got)
	}

	draft.Seal()
	draft.ExtendTo(10)
	if got := draft.Bounds().T2; got != 4.5 {
		t.Fatalf("sealed interval must not extend, got %v", got)
	}
}

func TestNewDraftRejectsInvalidStart(t *testing.T) {
	if _, err := NewDraft(-1, Payload{}); err == nil {
		t.Fatalf("expected error for negative draft start")
	}
}

func TestCommittedIntervalNeverExtends(t *testing.T) {
	iv := captionAt(t, 1, 2, "x")
	iv.ExtendTo(9)
	if got := iv.Bounds().T2; got != 2 {
		t.Fatalf("committed interval extended to %v", got)
	}
}

func TestCloneKeepsIdentityAndCopiesPayload(t *testing.T) {
	b, _ := NewBounds(0, 1)
	iv := New(b, Payload{Spatial: BBox{X1: 0.1, X2: 0.2, Y1: 0.3, Y2: 0.4}, Metadata: map[string]any{"track": 7}})
	cp := iv.Clone()
	if cp.ID() != iv.ID() {
		t.Fatalf("clone must preserve identity")
	}
	cp.Data().Metadata["track"] = 8
	if iv.Data().Metadata["track"] != 7 {
		t.Fatalf("clone must not share metadata storage")
	}
}
