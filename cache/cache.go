// Package cache provides memoization for repeated get_walkers-style
// computations over machine.StateMachine graphs: a sync.RWMutex-guarded
// map plus FIFO eviction, keyed by (StateMachine.Fingerprint(), State)
// rather than recomputing a walker expansion every time the same state
// is reached again.
package cache

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/latticeforge/gramwalk/machine"
	"github.com/latticeforge/gramwalk/state"
)

// Key identifies one memoized computation: a structural digest of the
// owning state machine plus the state being expanded from.
type Key struct {
	Fingerprint uint256.Int
	At          state.State
}

// WalkerCache caches []machine.Walker slices keyed by Key. This is purely
// a performance layer: the core algorithms never consult it themselves,
// callers opt in explicitly through GetOrCompute.
type WalkerCache struct {
	mu        sync.RWMutex
	entries   map[Key][]machine.Walker
	order     []Key
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache with the given maximum entry count. A maxSize of 0
// means unlimited.
func New(maxSize int) *WalkerCache {
	return &WalkerCache{
		entries: make(map[Key][]machine.Walker),
		maxSize: maxSize,
	}
}

func keyFor(sm *machine.StateMachine, at state.State) Key {
	return Key{Fingerprint: sm.Fingerprint(), At: at}
}

// Get retrieves the cached walker slice for (sm, at), if present.
func (c *WalkerCache) Get(sm *machine.StateMachine, at state.State) ([]machine.Walker, bool) {
	key := keyFor(sm, at)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if walkers, ok := c.entries[key]; ok {
		c.hits++
		return walkers, true
	}
	c.misses++
	return nil, false
}

// Put stores walkers for (sm, at), evicting the oldest entry (FIFO) if
// the cache is at capacity.
func (c *WalkerCache) Put(sm *machine.StateMachine, at state.State, walkers []machine.Walker) {
	key := keyFor(sm, at)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		c.entries[key] = walkers
		return
	}
	if c.maxSize > 0 && len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.evictions++
	}
	c.entries[key] = walkers
	c.order = append(c.order, key)
}

// GetOrCompute retrieves the cached result for (sm, at), or calls compute
// and caches its result if nothing was cached yet.
func (c *WalkerCache) GetOrCompute(sm *machine.StateMachine, at state.State, compute func() []machine.Walker) []machine.Walker {
	if walkers, ok := c.Get(sm, at); ok {
		return walkers
	}
	walkers := compute()
	c.Put(sm, at, walkers)
	return walkers
}

// Clear removes every cached entry.
func (c *WalkerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key][]machine.Walker)
	c.order = nil
}

// Size returns the current number of cached entries.
func (c *WalkerCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports cache hit/miss/eviction counters.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// Stats returns current cache statistics.
func (c *WalkerCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}
