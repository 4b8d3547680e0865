package machine_test

import (
	"testing"

	"github.com/latticeforge/gramwalk/literal"
	. "github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/state"
	"github.com/latticeforge/gramwalk/vocab"
)

// abMachine builds the minimal literal-pair machine named throughout the
// scenarios: start=0, end={2}, graph={0:[(Lit('a'),1)], 1:[(Lit('b'),2)]}.
func abMachine() *StateMachine {
	return New(StateGraph{
		state.Int(0): {{SubMachine: literal.New("a", true), Target: state.Int(1)}},
		state.Int(1): {{SubMachine: literal.New("b", true), Target: state.Int(2)}},
	}, state.Int(0), []state.State{state.Int(2)}, false, true)
}

func rawValueOf(t *testing.T, w Walker) string {
	t.Helper()
	raw, ok := w.RawValue()
	if !ok {
		t.Fatalf("walker %s has no raw value", w)
	}
	return raw
}

// S1: the exact token is consumed in full and the walker accepts.
func TestScenarioLiteralPairAccepts(t *testing.T) {
	sm := abMachine()
	results := AdvanceAll(sm.GetWalkers(), "ab", nil)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	r := results[0]
	if r.Token != "ab" {
		t.Fatalf("Token = %q, want %q", r.Token, "ab")
	}
	if !r.Walker.HasReachedAcceptState() {
		t.Fatalf("walker did not reach accept state")
	}
	if got := rawValueOf(t, r.Walker); got != "ab" {
		t.Fatalf("RawValue = %q, want %q", got, "ab")
	}
}

// S2: a token that disagrees with the grammar produces an empty frontier.
func TestScenarioLiteralPairRejects(t *testing.T) {
	sm := abMachine()
	results := AdvanceAll(sm.GetWalkers(), "ac", nil)
	if len(results) != 0 {
		t.Fatalf("len(results) = %d, want 0", len(results))
	}
}

// S3: a token that over-runs the grammar but whose consumed prefix is
// itself a vocabulary entry is reported under that shorter prefix.
func TestScenarioVocabularySplit(t *testing.T) {
	sm := abMachine()
	vt := vocab.New("ab", "abc")
	results := AdvanceAll(sm.GetWalkers(), "abc", vt)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Token != "ab" {
		t.Fatalf("Token = %q, want %q", results[0].Token, "ab")
	}
	if !results[0].Walker.HasReachedAcceptState() {
		t.Fatalf("walker did not reach accept state")
	}
	if rem, ok := results[0].Walker.RemainingInput(); ok {
		t.Fatalf("remaining input should be cleared, got %q", rem)
	}
}

// S3 without a vocabulary: the partial consumption is dropped outright.
func TestScenarioPartialWithoutVocabularyDropped(t *testing.T) {
	sm := abMachine()
	results := AdvanceAll(sm.GetWalkers(), "abc", nil)
	if len(results) != 0 {
		t.Fatalf("len(results) = %d, want 0 (no vocabulary to split against)", len(results))
	}
}

// S4: offering the outer machine's next literal skips an optional edge.
func TestScenarioOptionalEdgeSkipped(t *testing.T) {
	optX := literal.New("x", true)
	optX.Optional = true
	sm := New(StateGraph{
		state.Int(0): {{SubMachine: optX, Target: state.Int(1)}},
		state.Int(1): {{SubMachine: literal.New("y", true), Target: state.Int(2)}},
	}, state.Int(0), []state.State{state.Int(2)}, false, true)

	results := AdvanceAll(sm.GetWalkers(), "y", nil)
	var sawAccept bool
	for _, r := range results {
		if r.Walker.HasReachedAcceptState() && rawValueOf(t, r.Walker) == "y" {
			sawAccept = true
		}
	}
	if !sawAccept {
		t.Fatalf("expected a walker that skipped the optional edge and accepted on %q, got %+v", "y", results)
	}
}

// S5: alternation A|B ("ab" | "ac") keeps both branches alive on their
// shared prefix, in stable declaration order, and only the matching
// branch survives the next character.
func TestScenarioAlternation(t *testing.T) {
	sm := New(StateGraph{
		state.Int(0): {
			{SubMachine: literal.New("ab", true), Target: state.Int(1)},
			{SubMachine: literal.New("ac", true), Target: state.Int(1)},
		},
	}, state.Int(0), []state.State{state.Int(1)}, false, true)

	first := AdvanceAll(sm.GetWalkers(), "a", nil)
	if len(first) != 2 {
		t.Fatalf("len(first) = %d, want 2", len(first))
	}

	abBranch := AdvanceAll([]Walker{first[0].Walker}, "b", nil)
	if len(abBranch) != 1 || !abBranch[0].Walker.HasReachedAcceptState() {
		t.Fatalf("expected the ab branch to accept on 'b', got %+v", abBranch)
	}
	if got := rawValueOf(t, abBranch[0].Walker); got != "ab" {
		t.Fatalf("RawValue = %q, want %q", got, "ab")
	}

	acBranch := AdvanceAll([]Walker{first[1].Walker}, "b", nil)
	if len(acBranch) != 0 {
		t.Fatalf("expected the ac branch to reject 'b', got %+v", acBranch)
	}
}

// S6: a self-looping optional machine (S -> aS | ε) accepts any run of
// "a" characters and terminates without runaway recursion.
func TestScenarioCyclicOptionalRecursion(t *testing.T) {
	loop := state.Int(0)
	body := literal.New("a", true)
	sm := New(StateGraph{
		loop: {{SubMachine: body, Target: loop}},
	}, loop, []state.State{loop}, true, true)

	results := AdvanceAll(sm.GetWalkers(), "aaa", nil)
	var sawAccept bool
	for _, r := range results {
		if r.Walker.HasReachedAcceptState() {
			if got := rawValueOf(t, r.Walker); got == "aaa" {
				sawAccept = true
			}
		}
	}
	if !sawAccept {
		t.Fatalf("expected a walker accepting %q, got %+v", "aaa", results)
	}
}

// Property 7 / boundary 9: an optional machine with an empty graph
// accepts immediately.
func TestEmptyOptionalMachineAccepts(t *testing.T) {
	sm := New(nil, state.Int(0), []state.State{state.Int(0)}, true, true)
	walkers := sm.GetWalkers()
	if len(walkers) == 0 {
		t.Fatalf("expected at least one initial walker")
	}
	var sawAccept bool
	for _, w := range walkers {
		if w.HasReachedAcceptState() {
			sawAccept = true
		}
	}
	if !sawAccept {
		t.Fatalf("expected at least one accepting walker among %+v", walkers)
	}
}

// Property 1: Clone produces an equal, independent walker.
func TestCloneIsIndependent(t *testing.T) {
	sm := abMachine()
	w := sm.GetWalkers()[0]
	sub := w.TransitionWalker()
	clone := w.Clone()

	if !w.Equal(clone) {
		t.Fatalf("clone should be equal to its source")
	}
	if clone.TransitionWalker() == sub {
		t.Fatalf("clone should own a copy of the transition walker, not share it")
	}

	advanced := clone.ConsumeToken("a")
	if len(advanced) == 0 {
		t.Fatalf("expected the clone to advance on 'a'")
	}
	if w.TransitionWalker() != sub || sub.ConsumedCharacterCount() != 0 {
		t.Fatalf("mutating via the clone's lineage must not affect the original")
	}
}

// Property 2/3: Advance does not mutate its input walker, and every
// successor's consumed-character count accounts for exactly the
// characters it absorbed.
func TestAdvanceDoesNotMutateInputAndTracksConsumedCount(t *testing.T) {
	sm := abMachine()
	w := sm.GetWalkers()[0]
	before := w.ConsumedCharacterCount()

	successors := sm.Advance(w, "a")
	if w.ConsumedCharacterCount() != before {
		t.Fatalf("Advance mutated its input walker's consumed count")
	}
	if len(successors) == 0 {
		t.Fatalf("expected at least one successor")
	}
	for _, s := range successors {
		rem, hasRem := s.RemainingInput()
		remLen := 0
		if hasRem {
			remLen = len(rem)
		}
		want := before + (len("a") - remLen)
		if s.ConsumedCharacterCount() < before {
			t.Fatalf("consumed count decreased: got %d, had %d", s.ConsumedCharacterCount(), before)
		}
		if s.ConsumedCharacterCount() != want {
			t.Fatalf("consumed count = %d, want %d", s.ConsumedCharacterCount(), want)
		}
	}
}

// Property 5: an edge explored by a walker stays explored in every
// descendant produced from it.
func TestExploredEdgesAreMonotonic(t *testing.T) {
	sm := abMachine()
	w := sm.GetWalkers()[0]
	successors := sm.Advance(w, "a")
	if len(successors) == 0 {
		t.Fatalf("expected at least one successor")
	}
	for _, s := range successors {
		for edge := range w.ExploredEdges() {
			if _, ok := s.ExploredEdges()[edge]; !ok {
				t.Fatalf("explored edge %+v dropped by descendant", edge)
			}
		}
	}
}

// Property 4: AcceptedState always reports accepted and never within-value.
func TestAcceptedStateInvariants(t *testing.T) {
	sm := abMachine()
	results := AdvanceAll(sm.GetWalkers(), "ab", nil)
	if len(results) != 1 {
		t.Fatalf("setup: len(results) = %d, want 1", len(results))
	}
	accepted, err := NewAcceptedState(results[0].Walker)
	if err != nil {
		t.Fatalf("NewAcceptedState: %v", err)
	}
	if !accepted.HasReachedAcceptState() {
		t.Fatalf("AcceptedState.HasReachedAcceptState() must be true")
	}
	if accepted.IsWithinValue() {
		t.Fatalf("AcceptedState.IsWithinValue() must be false")
	}
}

// NewAcceptedState rejects a nil walker or one with no owning machine.
func TestNewAcceptedStateRejectsInvalidWalker(t *testing.T) {
	if _, err := NewAcceptedState(nil); err == nil {
		t.Fatalf("expected an error wrapping a nil walker")
	}
	if _, err := NewAcceptedState(NewBaseWalker(nil, state.Int(0))); err == nil {
		t.Fatalf("expected an error wrapping a walker with no owning machine")
	}
}

// Property 10: a fully-consumable token produces exactly one walker with
// no remaining input whose raw value contains the token.
func TestFullyConsumableTokenProducesOneWalker(t *testing.T) {
	sm := literal.New("hello", true)
	results := AdvanceAll(sm.GetWalkers(), "hello", nil)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if _, hasRem := results[0].Walker.RemainingInput(); hasRem {
		t.Fatalf("expected no remaining input")
	}
	if got := rawValueOf(t, results[0].Walker); got != "hello" {
		t.Fatalf("RawValue = %q, want %q", got, "hello")
	}
}

// Ordering guarantee: AdvanceAll preserves the relative order of the
// input frontier for the descendants it emits.
func TestAdvanceAllPreservesFrontierOrder(t *testing.T) {
	sm := New(StateGraph{
		state.Int(0): {
			{SubMachine: literal.New("a", true), Target: state.Int(1)},
			{SubMachine: literal.New("b", true), Target: state.Int(1)},
		},
	}, state.Int(0), []state.State{state.Int(1)}, false, true)

	walkers := sm.GetWalkers()
	resA := AdvanceAll(walkers, "a", nil)
	resB := AdvanceAll(walkers, "b", nil)
	if len(resA) != 1 || len(resB) != 1 {
		t.Fatalf("expected exactly one survivor per token, got %d and %d", len(resA), len(resB))
	}
	if got := rawValueOf(t, resA[0].Walker); got != "a" {
		t.Fatalf("RawValue = %q, want %q", got, "a")
	}
	if got := rawValueOf(t, resB[0].Walker); got != "b" {
		t.Fatalf("RawValue = %q, want %q", got, "b")
	}

	// With two survivors, results follow the order of the walkers that
	// produced them, whichever order the frontier is given in.
	ab := literal.New("ab", true).GetWalkers()[0]
	ac := literal.New("ac", true).GetWalkers()[0]
	for _, frontier := range [][]Walker{{ab, ac}, {ac, ab}} {
		res := AdvanceAll(frontier, "a", nil)
		if len(res) != 2 {
			t.Fatalf("len(res) = %d, want 2", len(res))
		}
		for i, r := range res {
			want := frontier[i].(*literal.Walker).Text()
			if got := r.Walker.(*literal.Walker).Text(); got != want {
				t.Fatalf("result %d came from %q, want %q", i, got, want)
			}
		}
	}
}
