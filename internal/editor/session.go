package editor

import (
	"fmt"

	"annotcore/pkg/interval"
)

// Session manages one in-progress annotation being drawn over a channel
// set. Begin opens a draft point interval at the playhead; Advance grows
// its end as playback continues, touching the set so observers re-render;
// Commit seals the draft and records the insertion in the history;
// Cancel removes it as if it never existed.
type Session struct {
	set     *interval.Set
	history *History
	draft   *interval.Interval
}

// NewSession constructs a session editing the given set. A nil history
// gets a private one.
func NewSession(set *interval.Set, history *History) *Session {
	if history == nil {
		history = NewHistory()
	}
	return &Session{set: set, history: history}
}

// History returns the undo/redo history the session records into.
func (s *Session) History() *History { return s.history }

// Draft returns the in-progress interval, or nil when none is open.
func (s *Session) Draft() *interval.Interval { return s.draft }

// Begin opens a draft point interval at t and inserts it into the set so
// it renders immediately while being drawn.
func (s *Session) Begin(t float64, data interval.Payload) (*interval.Interval, error) {
	if s.draft != nil {
		return nil, fmt.Errorf("draft interval #%d already open", s.draft.ID())
	}
	draft, err := interval.NewDraft(t, data)
	if err != nil {
		return nil, err
	}
	s.set.Add(draft)
	s.draft = draft
	return draft, nil
}

// Advance grows the open draft's end to t and touches the set so
// generation-watching observers notice the in-place edit. A call with no
// open draft is an error; a target at or before the current end is a
// defined no-op of the draft itself.
func (s *Session) Advance(t float64) error {
	if s.draft == nil {
		return fmt.Errorf("no open draft")
	}
	s.draft.ExtendTo(t)
	s.set.Touch(s.draft)
	return nil
}

// Commit seals the draft and records its insertion as an undoable action.
// The draft was already in the set while drawing, so the action's Do is a
// no-op on first application; Undo removes the interval and Redo restores
// it.
func (s *Session) Commit() (*interval.Interval, error) {
	if s.draft == nil {
		return nil, fmt.Errorf("no open draft")
	}
	committed := s.draft
	committed.Seal()
	s.draft = nil
	s.history.Apply(interval.AddAction(s.set, committed))
	return committed, nil
}

// Cancel removes the open draft from the set without touching history.
func (s *Session) Cancel() error {
	if s.draft == nil {
		return fmt.Errorf("no open draft")
	}
	s.set.Remove(s.draft)
	s.draft = nil
	return nil
}
