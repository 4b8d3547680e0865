package literal

import (
	"testing"

	"github.com/latticeforge/gramwalk/machine"
)

func TestExactMatchAccepts(t *testing.T) {
	sm := New("hello", true)
	results := machine.AdvanceAll(sm.GetWalkers(), "hello", nil)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if !results[0].Walker.HasReachedAcceptState() {
		t.Fatalf("expected an exact match to accept")
	}
	if raw, ok := results[0].Walker.RawValue(); !ok || raw != "hello" {
		t.Fatalf("RawValue = (%q, %v), want (%q, true)", raw, ok, "hello")
	}
}

func TestFirstCharacterMismatchRejectsOutright(t *testing.T) {
	sm := New("hello", true)
	if successors := sm.GetWalkers()[0].ConsumeToken("xyz"); successors != nil {
		t.Fatalf("ConsumeToken on a first-character mismatch should return nil, got %v", successors)
	}
}

// A mismatch after a partial match surfaces as unresolved remaining input
// rather than an outright rejection; without a vocabulary to split
// against, AdvanceAll still drops it.
func TestPartialMatchThenMismatchIsDroppedWithoutVocabulary(t *testing.T) {
	sm := New("hello", true)
	results := machine.AdvanceAll(sm.GetWalkers(), "help", nil)
	if len(results) != 0 {
		t.Fatalf("len(results) = %d, want 0", len(results))
	}
}

func TestCaseSensitivity(t *testing.T) {
	caseSensitive := New("OK", true)
	if results := machine.AdvanceAll(caseSensitive.GetWalkers(), "ok", nil); len(results) != 0 {
		t.Fatalf("case-sensitive literal should not accept %q, got %+v", "ok", results)
	}

	caseFolded := New("OK", false)
	results := machine.AdvanceAll(caseFolded.GetWalkers(), "ok", nil)
	if len(results) != 1 || !results[0].Walker.HasReachedAcceptState() {
		t.Fatalf("case-insensitive literal should accept %q, got %+v", "ok", results)
	}
}

func TestOverrunLeavesRemainingInput(t *testing.T) {
	sm := New("ab", true)
	w := sm.GetWalkers()[0]
	successors := w.ConsumeToken("abcdef")
	if len(successors) != 1 {
		t.Fatalf("len(successors) = %d, want 1", len(successors))
	}
	rem, ok := successors[0].RemainingInput()
	if !ok || rem != "cdef" {
		t.Fatalf("RemainingInput = (%q, %v), want (%q, true)", rem, ok, "cdef")
	}
	if !successors[0].HasReachedAcceptState() {
		t.Fatalf("expected the literal to have reached accept before the overrun tail")
	}
}

func TestEmptyLiteralIsOptionalAndAcceptsImmediately(t *testing.T) {
	sm := New("", true)
	if !sm.Optional {
		t.Fatalf("expected an empty literal to be marked optional")
	}
	walkers := sm.GetWalkers()
	if len(walkers) != 1 || !walkers[0].HasReachedAcceptState() {
		t.Fatalf("expected the empty literal's initial walker to already be accepting, got %+v", walkers)
	}
}

func TestValidContinuationsReportRemainingSuffix(t *testing.T) {
	sm := New("abc", true)
	w := sm.GetWalkers()[0]
	got := w.GetValidContinuations(machine.MaxContinuationDepth)
	if len(got) != 1 || got[0] != "abc" {
		t.Fatalf("GetValidContinuations = %v, want [%q]", got, "abc")
	}

	successors := w.ConsumeToken("ab")
	if len(successors) != 1 {
		t.Fatalf("len(successors) = %d, want 1", len(successors))
	}
	got = successors[0].GetValidContinuations(machine.MaxContinuationDepth)
	if len(got) != 1 || got[0] != "c" {
		t.Fatalf("GetValidContinuations after partial match = %v, want [%q]", got, "c")
	}
}
