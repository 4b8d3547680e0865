// Package parser handles JSON import/export of machine.StateMachine
// grammars: encoding/json-driven construction plus permissive scalar
// coercion helpers (toState accepts either a decimal-integer key or a
// bare symbol) for round-tripping state identities through string keys.
package parser

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/latticeforge/gramwalk/literal"
	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/state"
)

// Spec is the JSON-serializable description of a machine.StateMachine.
// States are addressed by string key in the JSON form (an integer state
// renders as its decimal string, a symbol state as itself) and resolved
// back to state.State during Compile.
type Spec struct {
	StartState    string              `json:"start"`
	EndStates     []string            `json:"end"`
	Graph         map[string][]EdgeSpec `json:"graph,omitempty"`
	IsOptional    bool                `json:"optional,omitempty"`
	IsCaseSensitive *bool             `json:"caseSensitive,omitempty"`
}

// EdgeSpec describes one edge out of a graph state: either a literal leaf
// ("literal": "ab") or a nested machine ("machine": <Spec>), targeting
// "target".
type EdgeSpec struct {
	Literal *string `json:"literal,omitempty"`
	Machine *Spec   `json:"machine,omitempty"`
	Target  string  `json:"target"`
}

// FromJSON parses a Spec from JSON bytes.
func FromJSON(data []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("invalid grammar JSON: %w", err)
	}
	return &spec, nil
}

// ToJSON serializes sm's equivalent Spec back to JSON bytes. Only the
// portions of sm reachable through its Graph are captured; a leaf
// machine built by literal.New round-trips as a {"literal": ...} edge
// only when it appears nested inside a composed graph, since a bare leaf
// StateMachine carries no graph of its own to describe. ToJSON on a bare
// leaf machine returns an error asking the caller to wrap it first.
func ToJSON(sm *machine.StateMachine) ([]byte, error) {
	spec, err := toSpec(sm)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(spec, "", "  ")
}

func toSpec(sm *machine.StateMachine) (*Spec, error) {
	if sm == nil {
		return nil, fmt.Errorf("cannot serialize a nil state machine")
	}
	if len(sm.Graph) == 0 {
		return nil, fmt.Errorf("cannot serialize a leaf machine with no graph edges; wrap it in a composed machine first")
	}
	spec := &Spec{
		StartState: sm.Start.String(),
		IsOptional: sm.Optional,
	}
	cs := sm.CaseSensitive
	spec.IsCaseSensitive = &cs
	for _, end := range sm.End {
		spec.EndStates = append(spec.EndStates, end.String())
	}
	spec.Graph = make(map[string][]EdgeSpec)
	states := make([]state.State, 0, len(sm.Graph))
	for s := range sm.Graph {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].String() < states[j].String() })
	for _, s := range states {
		var edges []EdgeSpec
		for _, edge := range sm.Graph[s] {
			es := EdgeSpec{Target: edge.Target.String()}
			if lit, text, ok := asLiteral(edge.SubMachine); ok {
				_ = lit
				es.Literal = &text
			} else {
				nested, err := toSpec(edge.SubMachine)
				if err != nil {
					return nil, err
				}
				es.Machine = nested
			}
			edges = append(edges, es)
		}
		spec.Graph[s.String()] = edges
	}
	return spec, nil
}

// asLiteral reports whether sm was built by literal.New, returning the
// text it matches. There is no tag on StateMachine for this, so the
// check is structural: no graph, a leaf-walker factory, and a fresh
// walker from it that is a *literal.Walker.
func asLiteral(sm *machine.StateMachine) (lit *machine.StateMachine, text string, ok bool) {
	if sm == nil || len(sm.Graph) != 0 || sm.NewLeafWalker == nil {
		return nil, "", false
	}
	w := sm.GetNewWalker()
	lw, ok := w.(*literal.Walker)
	if !ok {
		return nil, "", false
	}
	return sm, lw.Text(), true
}

// Compile builds a machine.StateMachine from spec. An edge with neither
// "literal" nor "machine" set is reported via the returned error. Edge
// targets are not checked: any string resolves to a state.
func Compile(spec *Spec) (*machine.StateMachine, error) {
	if spec == nil {
		return nil, fmt.Errorf("cannot compile a nil grammar spec")
	}
	start := toState(spec.StartState)
	graph := machine.StateGraph{}
	for from, edges := range spec.Graph {
		fromState := toState(from)
		compiled := make([]machine.Edge, 0, len(edges))
		for _, es := range edges {
			sub, err := compileEdge(es)
			if err != nil {
				return nil, fmt.Errorf("state %s: %w", from, err)
			}
			compiled = append(compiled, machine.Edge{SubMachine: sub, Target: toState(es.Target)})
		}
		graph[fromState] = compiled
	}
	ends := make([]state.State, 0, len(spec.EndStates))
	for _, e := range spec.EndStates {
		ends = append(ends, toState(e))
	}
	caseSensitive := true
	if spec.IsCaseSensitive != nil {
		caseSensitive = *spec.IsCaseSensitive
	}
	return machine.New(graph, start, ends, spec.IsOptional, caseSensitive), nil
}

func compileEdge(es EdgeSpec) (*machine.StateMachine, error) {
	switch {
	case es.Literal != nil:
		return literal.New(*es.Literal, true), nil
	case es.Machine != nil:
		return Compile(es.Machine)
	default:
		return nil, fmt.Errorf("edge to %q has neither \"literal\" nor \"machine\"", es.Target)
	}
}

// toState resolves a JSON state key back into a state.State: an integer
// string becomes state.Int, anything else becomes state.Symbol.
func toState(s string) state.State {
	if n, ok := asInt(s); ok {
		return state.Int(n)
	}
	return state.Symbol(s)
}

func asInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	neg := false
	start := 0
	if s[0] == '-' {
		neg = true
		start = 1
		if len(s) == 1 {
			return 0, false
		}
	}
	for i := start; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
