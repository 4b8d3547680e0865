package machine

import "github.com/latticeforge/gramwalk/state"

// Transition is one candidate edge traversal discovered by GetTransitions:
// a freshly minted sub-walker for the edge's sub-machine, together with
// the states the outer walker would move between on completion.
type Transition struct {
	Sub        Walker
	SubMachine *StateMachine
	From       state.State
	To         state.State
}

// GetNewWalker constructs a fresh walker positioned at at (default
// sm.Start), using NewLeafWalker if the machine has leaf behavior.
func (sm *StateMachine) GetNewWalker(at ...state.State) Walker {
	start := sm.Start
	if len(at) > 0 {
		start = at[0]
	}
	if sm.NewLeafWalker != nil {
		return sm.NewLeafWalker(sm, start)
	}
	return NewBaseWalker(sm, start)
}

// GetWalkers returns the initial frontier for sm: a single fresh walker
// if the graph is empty, otherwise every first-edge branch of one.
func (sm *StateMachine) GetWalkers(at ...state.State) []Walker {
	w := sm.GetNewWalker(at...)
	if len(sm.Graph) == 0 {
		return []Walker{ensureAccepted(w)}
	}
	return sm.BranchWalker(w, nil)
}

// GetTransitions enumerates, for each edge out of from (walker's current
// state unless at overrides it), a fresh sub-walker per candidate. Edges
// whose sub-machine is optional and whose target is not itself an end
// state are also followed epsilon-style, so long as walker can still
// accept more input, contributing the transitions reachable from their
// target too.
func (sm *StateMachine) GetTransitions(walker Walker, at ...state.State) []Transition {
	from := walker.CurrentState()
	if len(at) > 0 {
		from = at[0]
	}
	var out []Transition
	for _, edge := range sm.GetEdges(from) {
		for _, sub := range edge.SubMachine.GetWalkers() {
			out = append(out, Transition{Sub: sub, SubMachine: edge.SubMachine, From: from, To: edge.Target})
		}
		if edge.SubMachine.Optional && !sm.IsEndState(edge.Target) && walker.CanAcceptMoreInput() {
			out = append(out, sm.GetTransitions(walker, edge.Target)...)
		}
	}
	return out
}

// BranchWalker materializes every candidate transition out of walker's
// current position into a new walker, via StartTransition. When an
// edge's sub-machine is optional and its target is an end state, the
// optional edge may also be skipped outright: in that case an
// AcceptedState wrapping the unmodified walker is yielded alongside,
// propagating token as remaining input to whatever consumes it next.
func (sm *StateMachine) BranchWalker(walker Walker, token *string) []Walker {
	var out []Walker
	for _, t := range sm.GetTransitions(walker, walker.CurrentState()) {
		from, to := t.From, t.To
		if w, ok := walker.StartTransition(t.Sub, token, &from, &to); ok {
			out = append(out, w)
		}
		if t.SubMachine.Optional && sm.IsEndState(t.To) && token != nil {
			if accepted, err := NewAcceptedState(walker); err == nil {
				out = append(out, accepted)
			}
		}
	}
	return out
}

// Advance drives walker through token via a breadth-first work queue,
// starting or completing transitions and branching around blocked
// positions, until every queued (walker, token) pair has either emitted
// a result or been exhausted. See §4.3 of the design for the algorithm
// this implements.
func (sm *StateMachine) Advance(walker Walker, token string) []Walker {
	type item struct {
		w Walker
		t string
	}
	queue := []item{{walker, token}}
	var out []Walker

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		w, t := cur.w, cur.t

		if w.TransitionWalker() == nil || !w.ShouldStartTransition(t) {
			tok := t
			branches := w.Branch(&tok)
			if len(branches) == 0 {
				if _, hasRemaining := w.RemainingInput(); hasRemaining {
					out = append(out, w)
				}
				continue
			}
			for _, b := range branches {
				if b.ShouldStartTransition(t) {
					queue = append(queue, item{b, t})
				} else if b.HasReachedAcceptState() {
					out = append(out, b)
					break
				}
			}
			continue
		}

		successors := w.TransitionWalker().ConsumeToken(t)
		for _, s := range successors {
			next, ok, _ := w.CompleteTransition(s)
			if !ok {
				continue
			}
			if rem, hasRem := next.RemainingInput(); hasRem {
				queue = append(queue, item{next, rem})
				continue
			}
			out = append(out, ensureAccepted(next))
		}
	}
	return out
}
