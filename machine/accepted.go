package machine

import (
	"errors"

	"github.com/latticeforge/gramwalk/state"
	"github.com/latticeforge/gramwalk/vocab"
)

// ErrNotAcceptable is returned by NewAcceptedState when the supplied
// walker is a genuine contract violation — nil, or missing its owning
// state machine — rather than a legitimate in-progress position that the
// engine itself wraps (branch_walker's optional-skip path wraps a walker
// that has not literally moved to an end state yet, by design; the
// constructor does not second-guess that call).
var ErrNotAcceptable = errors.New("machine: cannot construct AcceptedState from an invalid walker")

// AcceptedState is a thin wrapper marking a walker as having reached an
// accepting position. It copies no state: every observation and
// transition primitive delegates to the inner walker except the few
// this type overrides outright.
type AcceptedState struct {
	inner Walker
}

// NewAcceptedState wraps w. w must be non-nil and reference a state
// machine; beyond that, callers are trusted to only wrap walkers that
// have genuinely reached (or are propagating token past) an accepting
// position — see BranchWalker's optional-skip branch, which wraps the
// unmodified outer walker specifically because the position it reports
// acceptance for is contextual, not literally its current_state.
func NewAcceptedState(w Walker) (*AcceptedState, error) {
	if w == nil || w.StateMachine() == nil {
		return nil, ErrNotAcceptable
	}
	return &AcceptedState{inner: w}, nil
}

func (a *AcceptedState) Base() *BaseWalker                 { return a.inner.Base() }
func (a *AcceptedState) StateMachine() *StateMachine        { return a.inner.StateMachine() }
func (a *AcceptedState) CurrentState() state.State          { return a.inner.CurrentState() }
func (a *AcceptedState) TargetState() (state.State, bool)   { return a.inner.TargetState() }
func (a *AcceptedState) TransitionWalker() Walker           { return a.inner.TransitionWalker() }
func (a *AcceptedState) AcceptedHistory() []Walker          { return a.inner.AcceptedHistory() }
func (a *AcceptedState) ExploredEdges() map[VisitedEdge]struct{} {
	return a.inner.ExploredEdges()
}
func (a *AcceptedState) ConsumedCharacterCount() int      { return a.inner.ConsumedCharacterCount() }
func (a *AcceptedState) RemainingInput() (string, bool)   { return a.inner.RemainingInput() }
func (a *AcceptedState) RawValueOverride() (string, bool) { return a.inner.RawValueOverride() }

// Inner returns the wrapped walker.
func (a *AcceptedState) Inner() Walker { return a.inner }

func (a *AcceptedState) Clone() Walker {
	return &AcceptedState{inner: a.inner.Clone()}
}

func (a *AcceptedState) CanAcceptMoreInput() bool { return a.inner.CanAcceptMoreInput() }

// IsWithinValue is always false for an accepted position.
func (a *AcceptedState) IsWithinValue() bool { return false }

// HasReachedAcceptState is always true for this wrapper.
func (a *AcceptedState) HasReachedAcceptState() bool { return true }

func (a *AcceptedState) AcceptsAnyToken() bool { return a.inner.AcceptsAnyToken() }

func (a *AcceptedState) GetValidContinuations(depth int) []string {
	return a.inner.GetValidContinuations(depth)
}

func (a *AcceptedState) FindValidPrefixes(trie *vocab.Trie) []string {
	return a.inner.FindValidPrefixes(trie)
}

func (a *AcceptedState) CurrentEdge() (from state.State, to state.State, hasTo bool, raw string, hasRaw bool) {
	return a.inner.CurrentEdge()
}

func (a *AcceptedState) RawValue() (string, bool) { return a.inner.RawValue() }

// ShouldStartTransition additionally requires that the wrapper itself
// can still accept more input before delegating.
func (a *AcceptedState) ShouldStartTransition(token string) bool {
	return a.CanAcceptMoreInput() && a.inner.ShouldStartTransition(token)
}

func (a *AcceptedState) ShouldCompleteTransition() bool { return a.inner.ShouldCompleteTransition() }

func (a *AcceptedState) StartTransition(sub Walker, token *string, from, to *state.State) (Walker, bool) {
	w, ok := a.inner.StartTransition(sub, token, from, to)
	if !ok {
		return nil, false
	}
	return &AcceptedState{inner: w}, true
}

func (a *AcceptedState) CompleteTransition(finished Walker) (Walker, bool, bool) {
	w, ok, terminal := a.inner.CompleteTransition(finished)
	if !ok {
		return nil, false, false
	}
	return &AcceptedState{inner: w}, true, terminal
}

func (a *AcceptedState) Branch(token *string) []Walker {
	subs := a.inner.Branch(token)
	out := make([]Walker, len(subs))
	for i, s := range subs {
		out[i] = &AcceptedState{inner: s}
	}
	return out
}

// ConsumeToken is empty once the inner walker can no longer accept more
// input; otherwise it delegates.
func (a *AcceptedState) ConsumeToken(token string) []Walker {
	if !a.inner.CanAcceptMoreInput() {
		return nil
	}
	return a.inner.ConsumeToken(token)
}

// Equal compares the inner walker, unwrapping the other side too when it
// is itself an AcceptedState — structural equality, never address
// identity.
func (a *AcceptedState) Equal(other Walker) bool {
	if other == nil {
		return false
	}
	if otherAccepted, ok := other.(*AcceptedState); ok {
		return a.inner.Equal(otherAccepted.inner)
	}
	return a.inner.Equal(other)
}

func (a *AcceptedState) String() string { return "Accepted(" + a.inner.String() + ")" }

// ensureAccepted wraps w in an AcceptedState when it genuinely sits in an
// accepting position (its own state machine lists its current state as
// an end state) and is not already wrapped. Advance and AdvanceAll call
// this at every point a walker is about to be handed back to the caller
// with no remaining input left unresolved.
func ensureAccepted(w Walker) Walker {
	if w == nil || w.HasReachedAcceptState() {
		return w
	}
	sm := w.StateMachine()
	if sm == nil || !sm.IsEndState(w.CurrentState()) {
		return w
	}
	if accepted, err := NewAcceptedState(w); err == nil {
		return accepted
	}
	return w
}
