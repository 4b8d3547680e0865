package machine

import "github.com/latticeforge/gramwalk/state"

// ShouldStartTransition reports whether a transition walker should begin
// consuming token. If one already exists, the decision delegates to it;
// otherwise the walker may start unless its current edge has already
// been explored, in which case future re-entry is also blocked by
// clearing the accepts-more-input flag.
func (b *BaseWalker) ShouldStartTransition(token string) bool {
	if b.transition != nil {
		return b.transition.ShouldStartTransition(token)
	}
	raw, hasRaw := b.self().RawValue()
	var rawPtr *string
	if hasRaw {
		rawPtr = &raw
	}
	edge := newVisitedEdge(b.current, b.target, rawPtr)
	if b.isExplored(edge) {
		b.moreInputFlag = false
		return false
	}
	return true
}

// ShouldCompleteTransition delegates to the transition walker by
// default; leaf walkers impose their own acceptance preconditions by
// overriding HasReachedAcceptState instead, so the default here is
// always consulted through the transition walker.
func (b *BaseWalker) ShouldCompleteTransition() bool {
	if b.transition != nil {
		return b.transition.ShouldCompleteTransition()
	}
	return true
}

// StartTransition attempts to begin walking sub as the new transition
// walker, targeting to (if given) from from (if given).
func (b *BaseWalker) StartTransition(sub Walker, token *string, from, to *state.State) (Walker, bool) {
	if token != nil && sub != nil && !sub.ShouldStartTransition(*token) {
		return nil, false
	}
	if b.target != nil && to != nil && b.target.Equal(*to) && b.transition != nil && b.transition.CanAcceptMoreInput() {
		return nil, false
	}
	clone := b.self().Clone()
	cb := asBase(clone)
	if from != nil {
		cb.current = *from
	}
	if to != nil {
		t := *to
		cb.target = &t
	}
	if cb.transition != nil && cb.transition.HasReachedAcceptState() {
		cb.history = append(cb.history, cb.transition)
	}
	cb.transition = sub
	return clone, true
}

// CompleteTransition folds a finished sub-walker back into b: remaining
// input and consumed-character count transfer up, the completed edge is
// recorded in explored_edges, and — if the sub-walker has reached accept
// and a target state is pending — the walker advances to that target,
// reporting terminal acceptance if it lands in an end state.
func (b *BaseWalker) CompleteTransition(finished Walker) (Walker, bool, bool) {
	clone := b.self().Clone()
	cb := asBase(clone)
	cb.transition = finished

	if rem, ok := finished.RemainingInput(); ok {
		cb.remaining = &rem
	} else {
		cb.remaining = nil
	}
	cb.consumed += finished.ConsumedCharacterCount()

	raw, hasRaw := cb.self().RawValue()
	var rawPtr *string
	if hasRaw {
		rawPtr = &raw
	}
	cb.markExplored(newVisitedEdge(cb.current, cb.target, rawPtr))

	if !clone.ShouldCompleteTransition() {
		if clone.CanAcceptMoreInput() {
			return clone, true, false
		}
		return nil, false, false
	}

	if finished.HasReachedAcceptState() && cb.target != nil {
		cb.current = *cb.target
		if !finished.CanAcceptMoreInput() {
			cb.history = append(cb.history, finished)
			cb.transition = nil
			cb.target = nil
		}
		if cb.sm.IsEndState(cb.current) {
			return clone, true, true
		}
	}
	return clone, true, false
}

// Branch grows the walker's frontier by one more level: first by asking
// an existing transition walker to branch (folding each result back in
// as a new transition walker), then by consulting the owning machine's
// BranchWalker for fresh edges out of the current state.
func (b *BaseWalker) Branch(token *string) []Walker {
	var out []Walker
	if b.transition != nil && b.transition.CanAcceptMoreInput() {
		subs := b.transition.Branch(token)
		for _, sub := range subs {
			clone := b.self().Clone()
			asBase(clone).transition = sub
			out = append(out, clone)
		}
		if len(subs) == 0 && !b.transition.HasReachedAcceptState() {
			return out
		}
	}
	out = append(out, b.sm.BranchWalker(b.self(), token)...)
	return out
}

// ConsumeToken delegates to the owning state machine's Advance. Leaf
// walkers override this with direct character-level matching.
func (b *BaseWalker) ConsumeToken(token string) []Walker {
	return b.sm.Advance(b.self(), token)
}

// asBase extracts the underlying *BaseWalker from a Walker value,
// whether it is the generic composite walker or a leaf wrapper that
// embeds one.
func asBase(w Walker) *BaseWalker {
	return w.Base()
}
