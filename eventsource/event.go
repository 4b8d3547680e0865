package eventsource

import (
	"time"

	"github.com/google/uuid"
)

// Event is one fact recorded against an aggregate: an immutable,
// versioned record of something that happened. A stream of Events,
// replayed in order, is what rebuilds an aggregate's state — there is no
// other persisted form. uuid.NewRandom mints both the event id and (for
// a fresh aggregate) the stream id.
type Event struct {
	ID          string    `json:"id"`
	AggregateID string    `json:"aggregateId"`
	Type        string    `json:"type"`
	Version     int       `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Data        any       `json:"data,omitempty"`
}

// NewEvent constructs an Event for aggregateID, stamped with a fresh
// uuid and the current time. Version is left at zero; a Store assigns
// the real version on Append.
func NewEvent(aggregateID, eventType string, data any) (*Event, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:          id.String(),
		AggregateID: aggregateID,
		Type:        eventType,
		Timestamp:   time.Now(),
		Data:        data,
	}, nil
}

// NewAggregateID mints a fresh aggregate identifier.
func NewAggregateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
