package machine

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/latticeforge/gramwalk/state"
)

// exploredBitWidth bounds the integer-state fast path's (from, to) index
// space. A pair outside this range never consults the bitset at all and
// falls straight through to the exact explored_edges set, which stays
// authoritative regardless.
const exploredBitWidth = 4096

// exploredBitIndex returns the flat bit index for the (from, to) pair
// when both states are Integer-tagged and within exploredBitWidth.
func exploredBitIndex(from, to state.State) (uint, bool) {
	if !from.IsInt() || !to.IsInt() {
		return 0, false
	}
	if from.Int < 0 || from.Int >= exploredBitWidth || to.Int < 0 || to.Int >= exploredBitWidth {
		return 0, false
	}
	return uint(from.Int)*exploredBitWidth + uint(to.Int), true
}

// isExplored reports whether edge has already been recorded. When edge
// carries no raw value and both its endpoints are integer states, the
// bitset is checked first: a clear bit proves the edge was never visited
// without touching the map. A set bit (or a raw-value-carrying edge, or
// a non-integer endpoint) always falls back to the exact set, since the
// bitset only ever records a superset of what it represents.
func (b *BaseWalker) isExplored(edge VisitedEdge) bool {
	if !edge.HasRaw && edge.HasTo {
		if idx, ok := exploredBitIndex(edge.From, edge.To); ok {
			if b.exploredBits == nil || !b.exploredBits.Test(idx) {
				return false
			}
		}
	}
	_, seen := b.explored[edge]
	return seen
}

// markExplored records edge in the exact set and, when it qualifies, sets
// its bit in the integer-state fast path too.
func (b *BaseWalker) markExplored(edge VisitedEdge) {
	b.explored[edge] = struct{}{}
	if !edge.HasRaw && edge.HasTo {
		if idx, ok := exploredBitIndex(edge.From, edge.To); ok {
			if b.exploredBits == nil {
				b.exploredBits = bitset.New(exploredBitWidth * exploredBitWidth)
			}
			b.exploredBits.Set(idx)
		}
	}
}

// cloneExploredBits returns a copy of b's bitset, or nil if none was ever
// allocated.
func (b *BaseWalker) cloneExploredBits() *bitset.BitSet {
	if b.exploredBits == nil {
		return nil
	}
	return b.exploredBits.Clone()
}
