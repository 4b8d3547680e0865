// Package machine implements the hierarchical NFA-walking engine: an
// immutable StateMachine graph description, a cloning Walker cursor, and
// the advance/branch algorithms that drive a frontier of walkers through
// a proposed token.
package machine

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/latticeforge/gramwalk/state"
)

// Edge is a labeled transition: walking sub-machine to completion and
// landing in an accepting position moves the outer walker to Target.
type Edge struct {
	SubMachine *StateMachine
	Target     state.State
}

// StateGraph maps a state to its ordered outgoing edges. A missing key
// means no outgoing edges, not an error.
type StateGraph map[state.State][]Edge

// StateMachine is an immutable description of a transition graph. It
// collapses the source hierarchy's Acceptor/StateMachine inheritance tree
// into one concrete type: leaf behavior (literal matching, free-text
// acceptance, and so on) is supplied through NewLeafWalker rather than
// through a subclass.
type StateMachine struct {
	Graph         StateGraph
	Start         state.State
	End           []state.State
	Optional      bool
	CaseSensitive bool

	// NewLeafWalker, when set, is used in place of the generic composite
	// walker constructor. Leaf implementations (see package literal) set
	// this to return their own Walker implementation so that
	// ConsumeToken, ShouldStartTransition, HasReachedAcceptState, and
	// CanAcceptMoreInput can be overridden.
	NewLeafWalker func(sm *StateMachine, at state.State) Walker
}

// New constructs a StateMachine from the given arguments. A nil graph
// becomes an empty graph and a nil end list becomes {"$"}; start,
// optional, and caseSensitive are used exactly as given.
func New(graph StateGraph, start state.State, end []state.State, optional, caseSensitive bool) *StateMachine {
	if graph == nil {
		graph = StateGraph{}
	}
	if end == nil {
		end = []state.State{state.Symbol("$")}
	}
	return &StateMachine{
		Graph:         graph,
		Start:         start,
		End:           end,
		Optional:      optional,
		CaseSensitive: caseSensitive,
	}
}

// IsEndState reports whether s is one of the machine's accepting states.
func (sm *StateMachine) IsEndState(s state.State) bool {
	for _, e := range sm.End {
		if e.Equal(s) {
			return true
		}
	}
	return false
}

// GetEdges returns the edges out of s, or nil if s has none.
func (sm *StateMachine) GetEdges(s state.State) []Edge {
	return sm.Graph[s]
}

// Equal reports structural equality of the two state graphs, the
// equality relation callers are expected to memoize on.
func (sm *StateMachine) Equal(other *StateMachine) bool {
	if sm == other {
		return true
	}
	if sm == nil || other == nil {
		return false
	}
	return sm.Fingerprint() == other.Fingerprint()
}

// Fingerprint folds a digest of the machine's structural shape into a
// uint256, usable as a map/cache key by callers that want to memoize
// per-machine computation (see package cache). It is not part of the
// walker algorithms themselves.
func (sm *StateMachine) Fingerprint() uint256.Int {
	h := sha256.New()
	fmt.Fprintf(h, "start:%s|optional:%t|case:%t|end:", sm.Start, sm.Optional, sm.CaseSensitive)
	ends := make([]string, len(sm.End))
	for i, e := range sm.End {
		ends[i] = e.String()
	}
	sort.Strings(ends)
	for _, e := range ends {
		fmt.Fprintf(h, "%s,", e)
	}
	keys := make([]string, 0, len(sm.Graph))
	for k := range sm.Graph {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	byKey := make(map[string][]Edge, len(sm.Graph))
	for k, v := range sm.Graph {
		byKey[k.String()] = v
	}
	for _, k := range keys {
		fmt.Fprintf(h, "|%s:", k)
		for _, edge := range byKey[k] {
			var sub uint256.Int
			if edge.SubMachine != nil {
				sub = edge.SubMachine.Fingerprint()
			}
			fmt.Fprintf(h, "(%s->%s),", sub.Hex(), edge.Target)
		}
	}
	var out uint256.Int
	out.SetBytes(h.Sum(nil))
	return out
}

func (sm *StateMachine) String() string {
	return fmt.Sprintf("StateMachine(start=%s, end=%v, optional=%t)", sm.Start, sm.End, sm.Optional)
}
