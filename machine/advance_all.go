package machine

import "github.com/latticeforge/gramwalk/vocab"

// AdvanceResult pairs a walker surviving a token offer with the token
// text it actually advanced under — ordinarily the whole offered token,
// but a vocabulary-backed split prefix when only part of it could be
// consumed and that part is itself a legal vocabulary entry.
type AdvanceResult struct {
	Token  string
	Walker Walker
}

// AdvanceAll offers token to every walker in frontier. A walker that
// consumes it completely advances under the full token. A walker that
// only partially consumes it is dropped unless vocab is supplied and the
// consumed prefix is itself a vocabulary entry, in which case it
// advances under that shorter prefix with its remaining input cleared —
// never left set to the prefix, since the prefix is the effective token
// now and there is nothing left over to carry forward.
func AdvanceAll(frontier []Walker, token string, vocabulary *vocab.Trie) []AdvanceResult {
	var out []AdvanceResult
	for _, w := range frontier {
		for _, r := range w.ConsumeToken(token) {
			rem, hasRem := r.RemainingInput()
			if !hasRem || rem == "" {
				out = append(out, AdvanceResult{Token: token, Walker: ensureAccepted(r)})
				continue
			}
			if len(rem) > len(token) {
				continue
			}
			prefix := token[:len(token)-len(rem)]
			if vocabulary == nil || prefix == "" || !vocabulary.Contains(prefix) {
				continue
			}

			cleared := r.Clone()
			cleared.Base().remaining = nil

			if cleared.TransitionWalker() == nil && cleared.CanAcceptMoreInput() {
				for _, branch := range cleared.Branch(nil) {
					out = append(out, AdvanceResult{Token: prefix, Walker: ensureAccepted(branch)})
				}
				continue
			}
			out = append(out, AdvanceResult{Token: prefix, Walker: ensureAccepted(cleared)})
		}
	}
	return out
}
