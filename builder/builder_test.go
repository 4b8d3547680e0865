package builder

import (
	"testing"

	"github.com/latticeforge/gramwalk/machine"
)

func acceptsFully(t *testing.T, sm *machine.StateMachine, token string) bool {
	t.Helper()
	for _, r := range machine.AdvanceAll(sm.GetWalkers(), token, nil) {
		if r.Token == token && r.Walker.HasReachedAcceptState() {
			return true
		}
	}
	return false
}

func TestLiteralThen(t *testing.T) {
	sm := Literal("ab").Then(Literal("cd")).Done()
	if !acceptsFully(t, sm, "abcd") {
		t.Fatalf("expected %q to be accepted", "abcd")
	}
	if acceptsFully(t, sm, "abdc") {
		t.Fatalf("did not expect %q to be accepted", "abdc")
	}
}

func TestLiteralFoldIgnoresCase(t *testing.T) {
	sm := LiteralFold("OK").Done()
	if !acceptsFully(t, sm, "ok") {
		t.Fatalf("expected case-insensitive literal to accept %q", "ok")
	}
}

func TestAltAcceptsEitherBranch(t *testing.T) {
	sm := Alt(Literal("ab"), Literal("ac")).Done()
	if !acceptsFully(t, sm, "ab") || !acceptsFully(t, sm, "ac") {
		t.Fatalf("expected both alternatives to be accepted")
	}
	if acceptsFully(t, sm, "ad") {
		t.Fatalf("did not expect %q to be accepted", "ad")
	}
}

func TestOptionalMarksComposedMachine(t *testing.T) {
	sm := Literal("x").Optional().Done()
	if !sm.Optional {
		t.Fatalf("expected the composed machine to carry Optional = true")
	}
}

// An optional edge may be skipped by the enclosing chain: "xy" matches by
// taking it, "y" matches by skipping straight to the next literal.
func TestOptionalEdgeIsSkippableInAChain(t *testing.T) {
	sm := Literal("x").Optional().Then(Literal("y")).Done()
	if !acceptsFully(t, sm, "xy") {
		t.Fatalf("expected %q to be accepted", "xy")
	}
	if !acceptsFully(t, sm, "y") {
		t.Fatalf("expected %q to be accepted by skipping the optional edge", "y")
	}
}

func TestRepeatAcceptsAnyRunLength(t *testing.T) {
	sm := Literal("a").Repeat().Done()
	for _, tok := range []string{"", "a", "aa", "aaaa"} {
		if !acceptsFully(t, sm, tok) {
			t.Fatalf("expected repeat(%q) to accept %q", "a", tok)
		}
	}
}

func TestDoneIsIdempotentForSingleSegment(t *testing.T) {
	c := Literal("x")
	if c.Done() != c.Done() {
		t.Fatalf("Done() on a single-segment chain should return the same machine each call")
	}
}
