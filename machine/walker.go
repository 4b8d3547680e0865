package machine

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/latticeforge/gramwalk/state"
	"github.com/latticeforge/gramwalk/vocab"
)

// MaxContinuationDepth bounds GetValidContinuations recursion, guarding
// against unbounded recursion through cyclic grammars.
const MaxContinuationDepth = 10

// VisitedEdge is the cycle-guard key recorded in a walker's explored set:
// the state transitioned from, the state transitioned to (if resolved
// yet), and the raw value consumed along that edge (if any).
type VisitedEdge struct {
	From     state.State
	To       state.State
	HasTo    bool
	Raw      string
	HasRaw   bool
}

func newVisitedEdge(from state.State, to *state.State, raw *string) VisitedEdge {
	ve := VisitedEdge{From: from}
	if to != nil {
		ve.To, ve.HasTo = *to, true
	}
	if raw != nil {
		ve.Raw, ve.HasRaw = *raw, true
	}
	return ve
}

// Walker represents one live position in the hierarchical NFA. Every
// transition produces a new Walker via Clone or one of the transition
// primitives; the one in-place change to a published walker is
// ShouldStartTransition clearing its accepts-more-input flag when it
// finds the current edge already explored.
type Walker interface {
	// Base exposes the underlying generic walker state so the composite
	// transition algorithms can reach it regardless of which concrete
	// leaf type wraps it. Always promoted automatically by embedding
	// *BaseWalker; leaf implementations never need to write it by hand.
	Base() *BaseWalker

	StateMachine() *StateMachine
	CurrentState() state.State
	TargetState() (state.State, bool)
	TransitionWalker() Walker
	AcceptedHistory() []Walker
	ExploredEdges() map[VisitedEdge]struct{}
	ConsumedCharacterCount() int
	RemainingInput() (string, bool)
	RawValueOverride() (string, bool)

	Clone() Walker

	CanAcceptMoreInput() bool
	IsWithinValue() bool
	HasReachedAcceptState() bool
	AcceptsAnyToken() bool
	GetValidContinuations(depth int) []string
	FindValidPrefixes(trie *vocab.Trie) []string
	CurrentEdge() (from state.State, to state.State, hasTo bool, raw string, hasRaw bool)
	RawValue() (string, bool)

	ShouldStartTransition(token string) bool
	ShouldCompleteTransition() bool
	StartTransition(sub Walker, token *string, from, to *state.State) (Walker, bool)
	CompleteTransition(finished Walker) (Walker, bool, bool)
	Branch(token *string) []Walker
	ConsumeToken(token string) []Walker

	Equal(other Walker) bool
	String() string
}

// BaseWalker is the generic composite Walker implementation: the default
// behavior described in §4.2 for every operation not overridden by a
// leaf matcher. Leaf implementations embed a *BaseWalker and override
// ConsumeToken, ShouldStartTransition, HasReachedAcceptState, and
// CanAcceptMoreInput (package literal also overrides
// GetValidContinuations); every other method promotes through unchanged.
//
// ctor rebuilds a *BaseWalker into the correct outer Walker type (the
// leaf wrapper, if any) whenever a composite operation needs to pass
// "itself" to another operation that may call back into an overridden
// method. Go has no virtual dispatch through embedding, so this plays
// the role the source's virtual clone()/self pointer plays.
type BaseWalker struct {
	ctor func(*BaseWalker) Walker

	sm            *StateMachine
	current       state.State
	target        *state.State
	transition    Walker
	history       []Walker
	explored      map[VisitedEdge]struct{}
	exploredBits  *bitset.BitSet
	consumed      int
	remaining     *string
	rawOverride   *string
	moreInputFlag bool
}

// NewBaseWalker constructs the generic composite walker positioned at
// at. Leaf constructors instead call NewLeafBase and install their own
// ctor so self-dispatch resolves to their type.
func NewBaseWalker(sm *StateMachine, at state.State) *BaseWalker {
	// moreInputFlag starts false: a freshly built composite walker's
	// ability to accept more input is determined by whether its current
	// state has outgoing edges, not by this flag, which exists only so
	// should_start_transition can latch a definite "no" once it detects
	// an edge has already been explored.
	b := &BaseWalker{
		sm:       sm,
		current:  at,
		explored: map[VisitedEdge]struct{}{},
	}
	return b
}

// NewLeafBase constructs a BaseWalker for use by a leaf implementation,
// which must call SetCtor immediately afterward.
func NewLeafBase(sm *StateMachine, at state.State) *BaseWalker {
	return NewBaseWalker(sm, at)
}

// SetConsumedCharacterCount overwrites the consumed-character counter.
// Leaf implementations use this to track how much of their own value
// they have matched so far.
func (b *BaseWalker) SetConsumedCharacterCount(n int) { b.consumed = n }

// SetRemainingInput records the unconsumed suffix of the last offered
// token.
func (b *BaseWalker) SetRemainingInput(s string) { b.remaining = &s }

// ClearRemainingInput drops any previously recorded remaining input.
func (b *BaseWalker) ClearRemainingInput() { b.remaining = nil }

// SetRawValueOverride records the literal text a leaf walker matched.
func (b *BaseWalker) SetRawValueOverride(s string) { b.rawOverride = &s }

// SetAcceptsMoreInput overrides the accepts-more-input flag directly.
func (b *BaseWalker) SetAcceptsMoreInput(v bool) { b.moreInputFlag = v }

// SetCtor installs the function that rebuilds a cloned *BaseWalker into
// the correct outer Walker type. Leaf constructors must call this before
// the walker is used.
func (b *BaseWalker) SetCtor(ctor func(*BaseWalker) Walker) {
	b.ctor = ctor
}

// self returns the outer Walker wrapping b — itself, for the generic
// composite walker, or the leaf wrapper if ctor was installed.
func (b *BaseWalker) self() Walker {
	if b.ctor == nil {
		return b
	}
	return b.ctor(b)
}

func (b *BaseWalker) Base() *BaseWalker { return b }

func (b *BaseWalker) StateMachine() *StateMachine { return b.sm }
func (b *BaseWalker) CurrentState() state.State   { return b.current }

func (b *BaseWalker) TargetState() (state.State, bool) {
	if b.target == nil {
		return state.State{}, false
	}
	return *b.target, true
}

func (b *BaseWalker) TransitionWalker() Walker { return b.transition }
func (b *BaseWalker) AcceptedHistory() []Walker {
	return b.history
}

func (b *BaseWalker) ExploredEdges() map[VisitedEdge]struct{} { return b.explored }
func (b *BaseWalker) ConsumedCharacterCount() int             { return b.consumed }

func (b *BaseWalker) RemainingInput() (string, bool) {
	if b.remaining == nil {
		return "", false
	}
	return *b.remaining, true
}

func (b *BaseWalker) RawValueOverride() (string, bool) {
	if b.rawOverride == nil {
		return "", false
	}
	return *b.rawOverride, true
}

// Clone duplicates b — and, recursively, its transition walker and
// accepted history, which are exclusively owned afterward by the clone —
// while leaving b untouched. The StateMachine reference is shared.
func (b *BaseWalker) Clone() Walker {
	nb := &BaseWalker{
		ctor:          b.ctor,
		sm:            b.sm,
		current:       b.current,
		history:       make([]Walker, len(b.history)),
		explored:      make(map[VisitedEdge]struct{}, len(b.explored)),
		exploredBits:  b.cloneExploredBits(),
		consumed:      b.consumed,
		moreInputFlag: b.moreInputFlag,
	}
	for k := range b.explored {
		nb.explored[k] = struct{}{}
	}
	if b.transition != nil {
		nb.transition = b.transition.Clone()
	}
	for i, h := range b.history {
		nb.history[i] = h.Clone()
	}
	if b.target != nil {
		t := *b.target
		nb.target = &t
	}
	if b.remaining != nil {
		r := *b.remaining
		nb.remaining = &r
	}
	if b.rawOverride != nil {
		r := *b.rawOverride
		nb.rawOverride = &r
	}
	if nb.ctor == nil {
		return nb
	}
	return nb.ctor(nb)
}

// CanAcceptMoreInput is true iff the transition walker can accept more
// input, the explicit flag is set, or the current state has outgoing
// edges.
func (b *BaseWalker) CanAcceptMoreInput() bool {
	if b.transition != nil && b.transition.CanAcceptMoreInput() {
		return true
	}
	if b.moreInputFlag {
		return true
	}
	return len(b.sm.GetEdges(b.current)) > 0
}

// IsWithinValue delegates to the transition walker, else reports whether
// any characters have been consumed yet.
func (b *BaseWalker) IsWithinValue() bool {
	if b.transition != nil {
		return b.transition.IsWithinValue()
	}
	return b.consumed > 0
}

// HasReachedAcceptState is false for the generic composite walker;
// AcceptedState and leaf matchers override it.
func (b *BaseWalker) HasReachedAcceptState() bool { return false }

// AcceptsAnyToken is false by default; free-text leaf walkers set true.
func (b *BaseWalker) AcceptsAnyToken() bool { return false }

// GetValidContinuations defaults to the transition walker's answer,
// bounded by MaxContinuationDepth to guard cyclic grammars.
func (b *BaseWalker) GetValidContinuations(depth int) []string {
	if depth <= 0 {
		return nil
	}
	if b.transition != nil {
		return b.transition.GetValidContinuations(depth - 1)
	}
	return nil
}

// FindValidPrefixes expands every valid continuation into the set of
// vocabulary entries carrying that continuation as a prefix.
func (b *BaseWalker) FindValidPrefixes(trie *vocab.Trie) []string {
	var out []string
	for _, c := range b.self().GetValidContinuations(MaxContinuationDepth) {
		out = append(out, trie.PrefixRange(c)...)
	}
	return out
}

// CurrentEdge reports the edge this walker is currently transitioning
// along, if any.
func (b *BaseWalker) CurrentEdge() (from state.State, to state.State, hasTo bool, raw string, hasRaw bool) {
	from = b.current
	if b.target != nil {
		to, hasTo = *b.target, true
	}
	raw, hasRaw = b.self().RawValue()
	return
}

// RawValue is the override if set, else the concatenation of accepted
// history's raw values followed by the transition walker's raw value.
func (b *BaseWalker) RawValue() (string, bool) {
	if b.rawOverride != nil {
		return *b.rawOverride, true
	}
	var out string
	any := false
	for _, h := range b.history {
		if v, ok := h.RawValue(); ok {
			out += v
			any = true
		}
	}
	if b.transition != nil {
		if v, ok := b.transition.RawValue(); ok {
			out += v
			any = true
		}
	}
	if !any {
		return "", false
	}
	return out, true
}

func (b *BaseWalker) Equal(other Walker) bool {
	if other == nil {
		return false
	}
	if !b.sm.Equal(other.StateMachine()) {
		return false
	}
	if !b.current.Equal(other.CurrentState()) {
		return false
	}
	av, aok := b.self().RawValue()
	bv, bok := other.RawValue()
	return aok == bok && av == bv
}

func (b *BaseWalker) String() string {
	raw, _ := b.self().RawValue()
	return fmt.Sprintf("Walker(state=%s, raw=%q)", b.current, raw)
}
