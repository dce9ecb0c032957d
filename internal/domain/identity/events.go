package identity

import (
	"github.com/autoparts/storefront/internal/domain/shared"
)

// Session event types
const (
	EventTypeSessionStarted = "identity.session_started"
	EventTypeSessionEnded   = "identity.session_ended"
)

// EndReason says why a session ended
type EndReason string

const (
	EndReasonLogout       EndReason = "logout"
	EndReasonUnauthorized EndReason = "unauthorized"
	EndReasonExpired      EndReason = "expired"
)

// SessionStartedEvent is published when a profile signs in
type SessionStartedEvent struct {
	shared.EventHeader
	UserID string `json:"user_id"`
}

// NewSessionStartedEvent creates a new SessionStartedEvent
func NewSessionStartedEvent(profileID, userID string) *SessionStartedEvent {
	return &SessionStartedEvent{
		EventHeader: shared.NewEventHeader(EventTypeSessionStarted, profileID),
		UserID:      userID,
	}
}

// SessionEndedEvent is published when a profile's session is torn down.
// Subscribers must drop any state tied to the session, the cart included.
type SessionEndedEvent struct {
	shared.EventHeader
	Reason EndReason `json:"reason"`
}

// NewSessionEndedEvent creates a new SessionEndedEvent
func NewSessionEndedEvent(profileID string, reason EndReason) *SessionEndedEvent {
	return &SessionEndedEvent{
		EventHeader: shared.NewEventHeader(EventTypeSessionEnded, profileID),
		Reason:      reason,
	}
}
