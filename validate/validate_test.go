package validate

import (
	"testing"

	"github.com/latticeforge/gramwalk/literal"
	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/state"
)

func TestValidateNilMachine(t *testing.T) {
	result := Validate(nil)
	if result.Valid {
		t.Fatalf("expected nil machine to be invalid")
	}
	if err := result.AsError(); err == nil {
		t.Fatalf("expected AsError to return non-nil for invalid result")
	}
}

func TestValidateLiteralMachine(t *testing.T) {
	sm := literal.New("ab", true)
	result := Validate(sm)
	if !result.Valid {
		t.Fatalf("expected literal machine to be valid, got errors: %+v", result.Errors)
	}
}

func TestValidateNoEndStates(t *testing.T) {
	sm := machine.New(machine.StateGraph{}, state.Int(0), nil, false, true)
	result := Validate(sm)
	if result.Valid {
		t.Fatalf("expected machine with no end states to be invalid")
	}
}

func TestValidateUnreachableEndState(t *testing.T) {
	start := state.Int(0)
	unreachable := state.Int(9)
	sm := machine.New(machine.StateGraph{}, start, []state.State{unreachable}, false, true)
	result := Validate(sm)
	if result.Valid {
		t.Fatalf("expected machine with unreachable end state to be invalid")
	}
}

func TestValidateNilSubMachine(t *testing.T) {
	start := state.Int(0)
	end := state.Int(1)
	graph := machine.StateGraph{start: {{SubMachine: nil, Target: end}}}
	sm := machine.New(graph, start, []state.State{end}, false, true)
	result := Validate(sm)
	if result.Valid {
		t.Fatalf("expected machine with nil sub-machine edge to be invalid")
	}
}

func TestValidateDanglingEdgeTarget(t *testing.T) {
	start := state.Int(0)
	dangling := state.Int(5)
	end := state.Int(2)
	graph := machine.StateGraph{start: {{SubMachine: literal.New("a", true), Target: dangling}}}
	sm := machine.New(graph, start, []state.State{end}, false, true)
	result := Validate(sm)
	if result.Valid {
		t.Fatalf("expected machine with a dangling edge target to be invalid")
	}
	found := false
	for _, issue := range result.Errors {
		if issue.Category == "structure" && len(issue.Location) == 2 && issue.Location[1] == dangling.String() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a structure error naming the dangling target, got: %+v", result.Errors)
	}
}

func TestValidateEdgeTargetThatIsGraphKey(t *testing.T) {
	start := state.Int(0)
	mid := state.Int(1)
	end := state.Int(2)
	graph := machine.StateGraph{
		start: {{SubMachine: literal.New("a", true), Target: mid}},
		mid:   {{SubMachine: literal.New("b", true), Target: end}},
	}
	sm := machine.New(graph, start, []state.State{end}, false, true)
	result := Validate(sm)
	if !result.Valid {
		t.Fatalf("expected machine whose edge targets a graph key to be valid, got errors: %+v", result.Errors)
	}
}

func TestInvalidGrammarErrorMessage(t *testing.T) {
	err := NewInvalidGrammarError("structure", "something is wrong")
	if err.Error() == "" {
		t.Fatalf("expected non-empty error message")
	}
}
