// Package validate checks machine.StateMachine graphs for structural
// contract violations and carries InvalidGrammarError, the error type
// those findings surface as. Package machine does not use it: its own
// contract errors (such as machine.ErrNotAcceptable) are separate. Findings are
// split into errors, warnings, and info so a caller can tell "this
// grammar is broken" apart from "this grammar compiles but looks odd."
package validate

import (
	"fmt"
	"strings"

	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/state"
)

// Issue is one finding from Validate: a severity, a category, a message,
// the state(s) it concerns, and an optional suggestion.
type Issue struct {
	Severity   string   `json:"severity"` // "error", "warning", "info"
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	Location   []string `json:"location,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Result is the full outcome of Validate.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
	Info     []Issue `json:"info,omitempty"`
}

// InvalidGrammarError wraps every error-severity Issue found by Validate,
// or a single ad hoc issue built with NewInvalidGrammarError. Core
// operations in package machine do not return it; NewAcceptedState, for
// one, returns machine.ErrNotAcceptable.
type InvalidGrammarError struct {
	Issues []Issue
}

func (e *InvalidGrammarError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("invalid grammar: %s", e.Issues[0].Message)
	}
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("invalid grammar (%d issues): %s", len(e.Issues), strings.Join(msgs, "; "))
}

// NewInvalidGrammarError builds a single-issue InvalidGrammarError of
// error severity, for use at core-algorithm contract-violation sites that
// don't go through the full Validate pass.
func NewInvalidGrammarError(category, message string, location ...string) *InvalidGrammarError {
	return &InvalidGrammarError{Issues: []Issue{{
		Severity: "error",
		Category: category,
		Message:  message,
		Location: location,
	}}}
}

type validator struct {
	sm     *machine.StateMachine
	result *Result
}

func (v *validator) addError(category, message string, location ...string) {
	v.result.Errors = append(v.result.Errors, Issue{Severity: "error", Category: category, Message: message, Location: location})
}

func (v *validator) addWarning(category, message string, location ...string) {
	v.result.Warnings = append(v.result.Warnings, Issue{Severity: "warning", Category: category, Message: message, Location: location})
}

func (v *validator) addInfo(category, message string, location ...string) {
	v.result.Info = append(v.result.Info, Issue{Severity: "info", Category: category, Message: message, Location: location})
}

// Validate runs every structural check against sm and returns a Result.
// Use AsError to turn a failing Result into an InvalidGrammarError.
func Validate(sm *machine.StateMachine) *Result {
	v := &validator{sm: sm, result: &Result{Valid: true}}
	if sm == nil {
		v.addError("structure", "state machine is nil")
		v.result.Valid = false
		return v.result
	}
	v.checkEndStates()
	v.checkEdgeTargets()
	v.checkReachability()
	v.checkEmptyGraph()
	v.result.Valid = len(v.result.Errors) == 0
	return v.result
}

// AsError converts a Result with any error-severity issues into an
// InvalidGrammarError, or returns nil when the grammar is valid.
func (r *Result) AsError() error {
	if r.Valid {
		return nil
	}
	return &InvalidGrammarError{Issues: r.Errors}
}

// checkEndStates requires at least one declared end state.
func (v *validator) checkEndStates() {
	if len(v.sm.End) == 0 {
		v.addError("structure", "state machine declares no end states", v.sm.Start.String())
	}
}

// checkEdgeTargets requires every edge's sub-machine to be non-nil and
// every edge target to be a state the graph can actually land a walker
// on: either a declared end state, or itself a key in the graph. A target
// that is neither is a dead end no walker can ever leave. A key whose
// edge list is empty counts as a key.
func (v *validator) checkEdgeTargets() {
	ends := make(map[state.State]bool, len(v.sm.End))
	for _, end := range v.sm.End {
		ends[end] = true
	}
	for from, edges := range v.sm.Graph {
		for _, edge := range edges {
			if edge.SubMachine == nil {
				v.addError("structure", fmt.Sprintf("edge out of state %s has a nil sub-machine", from), from.String())
				continue
			}
			if len(edge.SubMachine.End) == 0 {
				v.addWarning("structure", fmt.Sprintf("sub-machine on edge %s -> %s declares no end states", from, edge.Target), from.String(), edge.Target.String())
			}
			if !ends[edge.Target] {
				if _, isKey := v.sm.Graph[edge.Target]; !isKey {
					v.addError("structure", fmt.Sprintf("edge %s -> %s targets a state that is neither an end state nor a key in the graph", from, edge.Target), from.String(), edge.Target.String())
				}
			}
		}
	}
}

// checkReachability walks the graph from Start and flags end states that
// are never reachable. States that nothing reaches but that are not end
// states (orphaned fragments) are not flagged. A leaf machine is skipped:
// its leaf walker reaches the end state by matching input, not through
// graph edges.
func (v *validator) checkReachability() {
	if v.sm.NewLeafWalker != nil {
		return
	}
	reached := map[state.State]bool{v.sm.Start: true}
	queue := []state.State{v.sm.Start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range v.sm.Graph[cur] {
			if !reached[edge.Target] {
				reached[edge.Target] = true
				queue = append(queue, edge.Target)
			}
		}
	}
	for _, end := range v.sm.End {
		if !reached[end] {
			v.addError("reachability", fmt.Sprintf("end state %s is not reachable from start state %s", end, v.sm.Start), end.String())
		}
	}
}

// checkEmptyGraph notes (informationally) a leaf-style machine with no
// graph edges of its own — expected for literal.Walker and similar leaf
// matchers, never an error.
func (v *validator) checkEmptyGraph() {
	if len(v.sm.Graph) == 0 && v.sm.NewLeafWalker == nil {
		v.addInfo("structure", "state machine has no graph edges and no leaf-walker factory; it accepts only the empty string")
	}
}
