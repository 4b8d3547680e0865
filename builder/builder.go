// Package builder provides a fluent, chained-method construction API
// for machine grammars: Literal(...).Then(...).Done() composes leaf and
// nested machines into a single StateMachine without the caller ever
// touching a StateGraph directly.
package builder

import (
	"github.com/latticeforge/gramwalk/literal"
	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/state"
)

// Chain is an in-progress grammar fragment. Every combinator returns a
// new Chain; none mutate the one it was called on.
type Chain struct {
	segments []*machine.StateMachine
}

// Literal starts a chain matching exactly s, case-sensitively.
func Literal(s string) *Chain {
	return &Chain{segments: []*machine.StateMachine{literal.New(s, true)}}
}

// LiteralFold starts a chain matching s without regard to case.
func LiteralFold(s string) *Chain {
	return &Chain{segments: []*machine.StateMachine{literal.New(s, false)}}
}

// FromMachine wraps an already-built state machine as a one-segment
// chain, letting hand-built machines compose with the fluent API.
func FromMachine(sm *machine.StateMachine) *Chain {
	return &Chain{segments: []*machine.StateMachine{sm}}
}

// Then appends next's segments after c's, producing a sequential
// composition: c must fully match before next begins.
func (c *Chain) Then(next *Chain) *Chain {
	segs := make([]*machine.StateMachine, 0, len(c.segments)+len(next.segments))
	segs = append(segs, c.segments...)
	segs = append(segs, next.segments...)
	return &Chain{segments: segs}
}

// Optional marks the chain's composed machine as skippable: it accepts
// the empty string and its edges may be skipped by an enclosing machine.
func (c *Chain) Optional() *Chain {
	sm := c.Done()
	clone := *sm
	clone.Optional = true
	return FromMachine(&clone)
}

// Repeat builds the cyclic self-loop S → body S | ε: zero or more
// repetitions of c, with the loop state itself accepting.
func (c *Chain) Repeat() *Chain {
	body := c.Done()
	s := state.Int(0)
	graph := machine.StateGraph{
		s: {{SubMachine: body, Target: s}},
	}
	sm := machine.New(graph, s, []state.State{s}, true, true)
	return FromMachine(sm)
}

// Done materializes the chain into a single StateMachine: one segment
// returns itself unchanged; more than one is wired into a linear
// sequence of states 0..n.
func (c *Chain) Done() *machine.StateMachine {
	if len(c.segments) == 1 {
		return c.segments[0]
	}
	graph := machine.StateGraph{}
	for i, seg := range c.segments {
		from := state.Int(i)
		to := state.Int(i + 1)
		graph[from] = []machine.Edge{{SubMachine: seg, Target: to}}
	}
	end := state.Int(len(c.segments))
	return machine.New(graph, state.Int(0), []state.State{end}, false, true)
}

// Alt builds an alternation: one state with one parallel edge per
// alternative, all targeting the same end state. Enumeration order
// (and therefore branch order) follows the order chains are given in.
func Alt(chains ...*Chain) *Chain {
	start := state.Int(0)
	end := state.Int(1)
	edges := make([]machine.Edge, 0, len(chains))
	for _, c := range chains {
		edges = append(edges, machine.Edge{SubMachine: c.Done(), Target: end})
	}
	graph := machine.StateGraph{start: edges}
	sm := machine.New(graph, start, []state.State{end}, false, true)
	return FromMachine(sm)
}
