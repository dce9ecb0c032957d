package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about one client profile. It is published after
// the state change it describes has been written to the store.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	// ProfileID is the profile the event belongs to
	ProfileID() string
}

// EventHeader carries the fields every event has; events embed it by value
type EventHeader struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	At      time.Time `json:"occurred_at"`
	Profile string    `json:"profile_id"`
}

func NewEventHeader(eventType, profileID string) EventHeader {
	return EventHeader{
		ID:      uuid.New(),
		Type:    eventType,
		At:      time.Now().UTC(),
		Profile: profileID,
	}
}

func (h EventHeader) EventID() uuid.UUID    { return h.ID }
func (h EventHeader) EventType() string     { return h.Type }
func (h EventHeader) OccurredAt() time.Time { return h.At }
func (h EventHeader) ProfileID() string     { return h.Profile }
