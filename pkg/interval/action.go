package interval

// Action is a reversible mutation against a set, expressed as a pair of
// idempotent closures. Applying Do then Undo restores the pre-mutation set
// to an observably identical ordered sequence. Actions hold no history;
// history management belongs to the editing layer.
type Action struct {
	label string
	do    func()
	undo  func()
}

// NewAction wraps a do/undo closure pair.
func NewAction(label string, do, undo func()) Action {
	return Action{label: label, do: do, undo: undo}
}

// Label describes the action for history displays.
func (a Action) Label() string { return a.label }

// Do applies the mutation.
func (a Action) Do() {
	if a.do != nil {
		a.do()
	}
}

// Undo exactly reverses the mutation.
func (a Action) Undo() {
	if a.undo != nil {
		a.undo()
	}
}

// AddAction inserts iv into s; undo removes it. Do is idempotent: a second
// application while the interval is already present is a no-op rather than
// a duplicate insert.
func AddAction(s *Set, iv *Interval) Action {
	return NewAction("add interval", func() {
		if !s.Contains(iv.ID()) {
			s.Add(iv)
		}
	}, func() {
		s.Remove(iv)
	})
}

// RemoveAction removes iv from s; undo re-inserts it. Both directions are
// no-ops when the set is already in the target state.
func RemoveAction(s *Set, iv *Interval) Action {
	return NewAction("remove interval", func() {
		s.Remove(iv)
	}, func() {
		if !s.Contains(iv.ID()) {
			s.Add(iv)
		}
	})
}

// TouchAction bumps the set's generation for iv in both directions, forcing
// dependents to re-observe an interval whose end advanced in place.
func TouchAction(s *Set, iv *Interval) Action {
	return NewAction("touch interval", func() {
		s.Touch(iv)
	}, func() {
		s.Touch(iv)
	})
}
