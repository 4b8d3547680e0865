package session

import (
	"context"
	"testing"
	"time"

	"github.com/latticeforge/gramwalk/builder"
	"github.com/latticeforge/gramwalk/machine"
)

func buildAB() *machine.StateMachine {
	return builder.Literal("a").Then(builder.Literal("b")).Done()
}

func TestAdvanceExactMatchReachesAccept(t *testing.T) {
	s := New(buildAB(), nil)
	if _, err := s.Advance("ab"); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !AcceptStateReached(s.Frontier()) {
		t.Fatalf("expected frontier to contain an accepted walker")
	}
}

func TestAdvanceMismatchEmptiesFrontier(t *testing.T) {
	s := New(buildAB(), nil)
	if _, err := s.Advance("xx"); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !FrontierExhausted(s.Frontier()) {
		t.Fatalf("expected frontier to be exhausted after a total mismatch")
	}
}

func TestRuleFiresOnAcceptState(t *testing.T) {
	s := New(buildAB(), nil)
	fired := false
	s.AddRule("accept", AcceptStateReached, func(frontier []machine.Walker) error {
		fired = true
		return nil
	})
	if _, err := s.Advance("ab"); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !fired {
		t.Fatalf("expected the accept rule to have fired")
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	s := New(buildAB(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	tokens := make(chan string)
	errs := s.Run(ctx, tokens)

	cancel()
	select {
	case <-errs:
	case <-time.After(time.Second):
		t.Fatalf("expected Run to stop after context cancellation")
	}
}

func TestHistoryAccumulatesAcrossAdvances(t *testing.T) {
	s := New(buildAB(), nil)
	s.Advance("a")
	s.Advance("b")
	if len(s.History()) == 0 {
		t.Fatalf("expected history to record advance results")
	}
}
