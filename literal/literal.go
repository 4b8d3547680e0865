// Package literal implements the minimal leaf walker named throughout
// the engine's test scenarios: a matcher for one fixed string. It exists
// on top of the core engine, not inside it — the leaf-walker contract
// (machine.StateMachine.NewLeafWalker) is a public extension point, and
// this package is simply its first tenant.
package literal

import (
	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/state"
)

// New builds a StateMachine that accepts exactly the string s and
// nothing else. An empty s is itself a valid (trivially optional)
// literal: it accepts immediately.
func New(s string, caseSensitive bool) *machine.StateMachine {
	end := state.Int(len(s))
	sm := &machine.StateMachine{
		Start:         state.Int(0),
		End:           []state.State{end},
		Optional:      s == "",
		CaseSensitive: caseSensitive,
	}
	sm.NewLeafWalker = func(owner *machine.StateMachine, at state.State) machine.Walker {
		base := machine.NewLeafBase(owner, at)
		w := &Walker{BaseWalker: base, text: s}
		base.SetCtor(func(nb *machine.BaseWalker) machine.Walker {
			return &Walker{BaseWalker: nb, text: s}
		})
		return w
	}
	return sm
}

// Walker matches a fixed string exactly, character by character, honoring
// the owning machine's case-sensitivity flag. It embeds *machine.BaseWalker
// and overrides only the operations the leaf-walker contract requires;
// Branch, StartTransition, CompleteTransition, and Clone all promote
// through unchanged.
type Walker struct {
	*machine.BaseWalker
	text string
}

// Text returns the exact string this walker matches.
func (w *Walker) Text() string { return w.text }

func (w *Walker) matched() int {
	n := w.ConsumedCharacterCount()
	if n > len(w.text) {
		return len(w.text)
	}
	return n
}

// HasReachedAcceptState is true once every character of the literal has
// been matched.
func (w *Walker) HasReachedAcceptState() bool {
	return w.matched() >= len(w.text)
}

// CanAcceptMoreInput is true while characters of the literal remain
// unmatched.
func (w *Walker) CanAcceptMoreInput() bool {
	return w.matched() < len(w.text)
}

// ShouldStartTransition reports whether token's first character could
// begin matching the remaining suffix of the literal.
func (w *Walker) ShouldStartTransition(token string) bool {
	if token == "" {
		return true
	}
	suffix := w.text[w.matched():]
	if suffix == "" {
		return false
	}
	return equalByte(suffix[0], token[0], w.StateMachine().CaseSensitive)
}

// GetValidContinuations reports the single remaining suffix of the
// literal as the one string that would continue a match, or nothing if
// the literal is already fully matched.
func (w *Walker) GetValidContinuations(depth int) []string {
	if depth <= 0 {
		return nil
	}
	suffix := w.text[w.matched():]
	if suffix == "" {
		return nil
	}
	return []string{suffix}
}

// ConsumeToken matches as much of token against the literal's remaining
// suffix as will agree, character by character. An empty token is a
// no-op clone, preserving advance's idempotence invariant. A token whose
// first character disagrees with the remaining suffix is a rejection
// (empty result). A token that runs past the end of the literal leaves
// its tail as remaining input for an outer composite walker to place
// elsewhere.
func (w *Walker) ConsumeToken(token string) []machine.Walker {
	if token == "" {
		return []machine.Walker{w.Clone()}
	}

	matched := w.matched()
	suffix := w.text[matched:]
	caseSensitive := w.StateMachine().CaseSensitive
	common := commonPrefixLen(suffix, token, caseSensitive)
	if common == 0 && suffix != "" {
		return nil
	}

	clone := w.Clone()
	base := clone.Base()
	newMatched := matched + common
	base.SetConsumedCharacterCount(newMatched)
	base.SetRawValueOverride(w.text[:newMatched])
	if common < len(token) {
		base.SetRemainingInput(token[common:])
	} else {
		base.ClearRemainingInput()
	}
	return []machine.Walker{clone}
}

func commonPrefixLen(a, b string, caseSensitive bool) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if !equalByte(a[i], b[i], caseSensitive) {
			return i
		}
	}
	return n
}

func equalByte(a, b byte, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return toLower(a) == toLower(b)
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
