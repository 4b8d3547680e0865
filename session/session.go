// Package session provides a decode harness over machine.AdvanceAll: a
// rule/condition/action loop checked against the walker frontier after
// every token, so callers can react to frontier exhaustion or acceptance
// without polling the frontier themselves between calls to Advance.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/vocab"
)

// Condition inspects a frontier and reports whether a rule should fire.
type Condition func(frontier []machine.Walker) bool

// Action runs in response to a satisfied Condition. It may inspect but
// must not mutate the frontier slice it is given.
type Action func(frontier []machine.Walker) error

// Rule pairs a Condition with an Action, evaluated in registration order.
type Rule struct {
	Name      string
	Condition Condition
	Action    Action
	Enabled   bool
}

// FrontierExhausted is a Condition that fires when the frontier is empty.
func FrontierExhausted(frontier []machine.Walker) bool {
	return len(frontier) == 0
}

// AcceptStateReached is a Condition that fires when any walker in the
// frontier has reached an accepting position.
func AcceptStateReached(frontier []machine.Walker) bool {
	for _, w := range frontier {
		if w.HasReachedAcceptState() {
			return true
		}
	}
	return false
}

// Session drives one decode: a single walker frontier advanced one token
// at a time, with rules checked after each step.
type Session struct {
	mu        sync.RWMutex
	frontier  []machine.Walker
	vocab     *vocab.Trie
	rules     []*Rule
	history   []machine.AdvanceResult
}

// New starts a Session rooted at sm's initial frontier. vocabulary may be
// nil, in which case advance_all never accepts a partial-token split.
func New(sm *machine.StateMachine, vocabulary *vocab.Trie) *Session {
	return &Session{
		frontier: sm.GetWalkers(),
		vocab:    vocabulary,
	}
}

// AddRule registers a condition-action rule, evaluated after every call
// to Advance, in registration order.
func (s *Session) AddRule(name string, condition Condition, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, &Rule{Name: name, Condition: condition, Action: action, Enabled: true})
}

// Frontier returns a copy of the current walker frontier.
func (s *Session) Frontier() []machine.Walker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]machine.Walker, len(s.frontier))
	copy(out, s.frontier)
	return out
}

// Advance offers token to every walker in the frontier via
// machine.AdvanceAll, replaces the frontier with the survivors, checks
// every registered rule against the new frontier, and returns the
// results that produced it.
func (s *Session) Advance(token string) ([]machine.AdvanceResult, error) {
	s.mu.Lock()
	results := machine.AdvanceAll(s.frontier, token, s.vocab)
	next := make([]machine.Walker, len(results))
	for i, r := range results {
		next[i] = r.Walker
	}
	s.frontier = next
	s.history = append(s.history, results...)
	rulesToCheck := make([]*Rule, len(s.rules))
	copy(rulesToCheck, s.rules)
	frontierCopy := make([]machine.Walker, len(next))
	copy(frontierCopy, next)
	s.mu.Unlock()

	for _, rule := range rulesToCheck {
		if rule.Enabled && rule.Condition(frontierCopy) {
			if err := rule.Action(frontierCopy); err != nil {
				return results, fmt.Errorf("rule %q: %w", rule.Name, err)
			}
		}
	}
	return results, nil
}

// History returns every AdvanceResult produced across all calls to
// Advance so far, in order.
func (s *Session) History() []machine.AdvanceResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]machine.AdvanceResult, len(s.history))
	copy(out, s.history)
	return out
}

// Run feeds tokens arriving on the channel through Advance one at a time
// until the channel closes or ctx is cancelled. Advance errors are
// delivered on the returned error channel; the caller decides whether to
// stop.
func (s *Session) Run(ctx context.Context, tokens <-chan string) <-chan error {
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			case token, ok := <-tokens:
				if !ok {
					return
				}
				if _, err := s.Advance(token); err != nil {
					select {
					case errs <- err:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return errs
}
