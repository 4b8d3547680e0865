package eventsource

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Common aggregate errors.
var (
	ErrAggregateNotFound = errors.New("aggregate not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrCommandRejected   = errors.New("command rejected by guard")
)

// Aggregate is the interface for event-sourced aggregates.
type Aggregate interface {
	// ID returns the aggregate identifier.
	ID() string

	// Version returns the current event version.
	Version() int

	// Apply applies an event to update the aggregate state.
	// This should be a pure function with no side effects.
	Apply(event *Event) error

	// State returns the current aggregate state.
	State() any
}

// SessionCommand is an intent to offer a token to, or resolve a token
// against, a decode session. AggregateID names the session; Token and
// Effective carry the offered/matched token text; Frontier carries the
// post-resolution walker count where relevant.
type SessionCommand struct {
	Type        string
	AggregateID string
	Token       string
	Effective   string
	Frontier    int
}

// SessionCommandHandler turns a dispatched SessionCommand into the
// events it produces, given the session it targets.
type SessionCommandHandler func(ctx context.Context, sess *Session, cmd SessionCommand) ([]*Event, error)

// CommandGuard reports whether cmd may run against sess's current
// state, rejecting it with a descriptive error otherwise. This is the
// grammar-session analogue of a Petri-net transition's guard: a
// condition that must hold before a handler is allowed to fire.
type CommandGuard func(state SessionState, cmd SessionCommand) error

// commandDef pairs a handler with an optional guard. There are no
// input/output places to check here — a decode session carries one
// frontier, not a multi-place marking — only the fire-if-guard-passes
// shape survives from that model.
type commandDef struct {
	guard   CommandGuard
	handler SessionCommandHandler
}

// SessionRepository loads and saves Session aggregates against a Store
// and dispatches SessionCommands through handlers registered with
// RegisterCommand, checking each command's guard before running it.
type SessionRepository struct {
	mu       sync.RWMutex
	store    Store
	commands map[string]commandDef
}

// newSessionRepository creates a repository backed by store with no
// commands registered yet; callers add commands via RegisterCommand.
func newSessionRepository(store Store) *SessionRepository {
	return &SessionRepository{
		store:    store,
		commands: make(map[string]commandDef),
	}
}

// RegisterCommand wires a command type to the handler (and optional
// guard, which may be nil to mean "always allowed") that processes it.
func (r *SessionRepository) RegisterCommand(cmdType string, guard CommandGuard, handler SessionCommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmdType] = commandDef{guard: guard, handler: handler}
}

// Load retrieves a Session by ID, replaying its event stream to rebuild
// its state.
func (r *SessionRepository) Load(ctx context.Context, id string) (*Session, error) {
	sess := NewSession(id)

	events, err := r.store.Read(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		if err := sess.Apply(event); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// Save persists new events for sess. sess has already applied events
// (Record* methods apply as they build), so its Version() reflects the
// stream *after* they're accounted for; the store's optimistic-lock
// check wants the version the stream was at before them.
func (r *SessionRepository) Save(ctx context.Context, sess *Session, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	expectedVersion := sess.Version() - len(events)
	_, err := r.store.Append(ctx, sess.ID(), expectedVersion, events)
	return err
}

// Execute loads the session named by id, checks cmd's guard against its
// current state, runs the handler registered for cmd.Type, and saves
// the events the handler produced.
func (r *SessionRepository) Execute(ctx context.Context, id string, cmd SessionCommand) error {
	r.mu.RLock()
	def, ok := r.commands[cmd.Type]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown session command: %s", cmd.Type)
	}

	sess, err := r.Load(ctx, id)
	if err != nil {
		return err
	}

	if def.guard != nil {
		if err := def.guard(sess.TypedState(), cmd); err != nil {
			return fmt.Errorf("%w: %v", ErrCommandRejected, err)
		}
	}

	events, err := def.handler(ctx, sess, cmd)
	if err != nil {
		return err
	}

	return r.Save(ctx, sess, events)
}
