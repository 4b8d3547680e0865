package eventsource

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Event type names recorded by a Session.
const (
	EventTokenOffered           = "TokenOffered"
	EventTokenAccepted          = "TokenAccepted"
	EventTokenPartiallyAccepted = "TokenPartiallyAccepted"
	EventTokenRejected          = "TokenRejected"
	EventGrammarExhausted       = "GrammarExhausted"
)

// SessionState is the replayable state a Session aggregate folds events
// into: how many walkers survive and the running history of offered
// tokens, enough to answer "what was proposed and what happened to it"
// without needing the original machine.Walker values, which are not
// themselves serializable.
type SessionState struct {
	FrontierSize int
	Exhausted    bool
	Offered      []string
}

// TokenOfferedData is the payload of an EventTokenOffered event.
type TokenOfferedData struct {
	Token string `json:"token"`
}

// TokenResolvedData is the payload of an accepted/partial/rejected event.
type TokenResolvedData struct {
	Token         string `json:"token"`
	EffectiveToken string `json:"effectiveToken,omitempty"`
	FrontierSize  int    `json:"frontierSize"`
}

// Session is an event-sourced aggregate recording the tokens offered to
// a decode session's frontier and how the frontier changed. Unlike a
// generic aggregate built around a handler registry, Session is the only
// aggregate type this package has, so Apply dispatches its five event
// types with a direct switch rather than a map of registered callbacks.
type Session struct {
	mu      sync.RWMutex
	id      string
	version int
	state   SessionState
}

// NewSession creates a Session aggregate for id with an empty frontier
// history.
func NewSession(id string) *Session {
	return &Session{id: id, version: -1}
}

// ID returns the session's aggregate identifier.
func (s *Session) ID() string { return s.id }

// Version returns the version of the last event folded into this
// session's state.
func (s *Session) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// State returns the current SessionState as an any, satisfying Aggregate.
func (s *Session) State() any { return s.TypedState() }

// TypedState returns the current SessionState.
func (s *Session) TypedState() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Apply folds event into the session's state. Every event type this
// package defines is handled inline; an event of any other type is
// rejected rather than silently ignored.
func (s *Session) Apply(event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Type {
	case EventTokenOffered:
		if data, ok := event.Data.(TokenOfferedData); ok {
			s.state.Offered = append(s.state.Offered, data.Token)
		}
	case EventTokenAccepted, EventTokenPartiallyAccepted:
		if data, ok := event.Data.(TokenResolvedData); ok {
			s.state.FrontierSize = data.FrontierSize
		}
	case EventTokenRejected:
		s.state.FrontierSize = 0
	case EventGrammarExhausted:
		s.state.Exhausted = true
		s.state.FrontierSize = 0
	default:
		return fmt.Errorf("session aggregate has no handler for event type: %s", event.Type)
	}

	s.version = event.Version
	return nil
}

// Ensure Session satisfies Aggregate.
var _ Aggregate = (*Session)(nil)

// RecordOffer builds and applies an EventTokenOffered event for token.
func (s *Session) RecordOffer(token string) (*Event, error) {
	return s.record(EventTokenOffered, TokenOfferedData{Token: token})
}

// RecordAccepted builds and applies an EventTokenAccepted event: token
// was consumed in full and the frontier now has frontierSize walkers.
func (s *Session) RecordAccepted(token string, frontierSize int) (*Event, error) {
	return s.record(EventTokenAccepted, TokenResolvedData{Token: token, FrontierSize: frontierSize})
}

// RecordPartiallyAccepted builds and applies an EventTokenPartiallyAccepted
// event: only effectiveToken (a vocabulary-split prefix of token) was
// consumed.
func (s *Session) RecordPartiallyAccepted(token, effectiveToken string, frontierSize int) (*Event, error) {
	return s.record(EventTokenPartiallyAccepted, TokenResolvedData{Token: token, EffectiveToken: effectiveToken, FrontierSize: frontierSize})
}

// RecordRejected builds and applies an EventTokenRejected event: token
// matched nothing in the frontier.
func (s *Session) RecordRejected(token string) (*Event, error) {
	return s.record(EventTokenRejected, TokenResolvedData{Token: token})
}

// RecordExhausted builds and applies an EventGrammarExhausted event: the
// frontier has become permanently empty.
func (s *Session) RecordExhausted() (*Event, error) {
	return s.record(EventGrammarExhausted, nil)
}

func (s *Session) record(eventType string, data any) (*Event, error) {
	event, err := NewEvent(s.ID(), eventType, data)
	if err != nil {
		return nil, err
	}
	event.Version = s.Version() + 1
	event.Timestamp = time.Now()
	if err := s.Apply(event); err != nil {
		return nil, err
	}
	return event, nil
}

// Session command types dispatched through a SessionRepository.
const (
	CommandOfferToken      = "OfferToken"
	CommandResolveAccepted = "ResolveAccepted"
	CommandResolvePartial  = "ResolvePartial"
	CommandResolveRejected = "ResolveRejected"
	CommandMarkExhausted   = "MarkExhausted"
)

// RejectIfExhausted is a CommandGuard refusing any command once the
// session's frontier has been recorded as permanently empty.
func RejectIfExhausted(state SessionState, cmd SessionCommand) error {
	if state.Exhausted {
		return fmt.Errorf("session already exhausted, rejecting %s", cmd.Type)
	}
	return nil
}

// NewSessionRepository wires a SessionRepository backed by store with
// handlers for every Session command, each guarded by RejectIfExhausted
// except MarkExhausted itself.
func NewSessionRepository(store Store) *SessionRepository {
	repo := newSessionRepository(store)
	repo.RegisterCommand(CommandOfferToken, RejectIfExhausted, func(ctx context.Context, sess *Session, cmd SessionCommand) ([]*Event, error) {
		event, err := sess.RecordOffer(cmd.Token)
		if err != nil {
			return nil, err
		}
		return []*Event{event}, nil
	})
	repo.RegisterCommand(CommandResolveAccepted, RejectIfExhausted, func(ctx context.Context, sess *Session, cmd SessionCommand) ([]*Event, error) {
		event, err := sess.RecordAccepted(cmd.Token, cmd.Frontier)
		if err != nil {
			return nil, err
		}
		return []*Event{event}, nil
	})
	repo.RegisterCommand(CommandResolvePartial, RejectIfExhausted, func(ctx context.Context, sess *Session, cmd SessionCommand) ([]*Event, error) {
		event, err := sess.RecordPartiallyAccepted(cmd.Token, cmd.Effective, cmd.Frontier)
		if err != nil {
			return nil, err
		}
		return []*Event{event}, nil
	})
	repo.RegisterCommand(CommandResolveRejected, RejectIfExhausted, func(ctx context.Context, sess *Session, cmd SessionCommand) ([]*Event, error) {
		event, err := sess.RecordRejected(cmd.Token)
		if err != nil {
			return nil, err
		}
		return []*Event{event}, nil
	})
	repo.RegisterCommand(CommandMarkExhausted, nil, func(ctx context.Context, sess *Session, cmd SessionCommand) ([]*Event, error) {
		event, err := sess.RecordExhausted()
		if err != nil {
			return nil, err
		}
		return []*Event{event}, nil
	})
	return repo
}
