package eventsource

import (
	"context"
	"fmt"
	"sync"
)

// Store persists and retrieves event streams keyed by aggregate id.
type Store interface {
	// Append adds events to the stream for id, checking expectedVersion
	// for optimistic concurrency (-1 means "stream must not exist yet").
	// Returns the new stream version.
	Append(ctx context.Context, id string, expectedVersion int, events []*Event) (int, error)

	// Read returns every event for id from fromVersion onward.
	Read(ctx context.Context, id string, fromVersion int) ([]*Event, error)

	// Close releases any resources held by the store.
	Close() error
}

// ErrConcurrencyConflict is returned by Append when expectedVersion does
// not match the stream's actual version.
var ErrConcurrencyConflict = fmt.Errorf("eventsource: concurrency conflict")

// MemoryStore is an in-process Store backed by a map, sufficient for
// tests and for a single-process session debugger. Nothing here needs
// durable storage across process restarts, so this stays in-memory only;
// a caller wanting persistence implements Store against whatever backing
// store fits their deployment.
type MemoryStore struct {
	mu      sync.Mutex
	streams map[string][]*Event
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]*Event)}
}

func (s *MemoryStore) Append(ctx context.Context, id string, expectedVersion int, events []*Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.streams[id]
	actualVersion := len(existing) - 1
	if expectedVersion != actualVersion {
		return actualVersion, ErrConcurrencyConflict
	}

	for i, e := range events {
		e.Version = actualVersion + 1 + i
	}
	s.streams[id] = append(existing, events...)
	return len(s.streams[id]) - 1, nil
}

func (s *MemoryStore) Read(ctx context.Context, id string, fromVersion int) ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.streams[id]
	out := make([]*Event, 0, len(all))
	for _, e := range all {
		if e.Version >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
