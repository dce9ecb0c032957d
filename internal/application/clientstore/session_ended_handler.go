package clientstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// SessionEndedHandler clears the cart and the checkout progress of a
// profile whose session ended
type SessionEndedHandler struct {
	store  *Service
	logger *zap.Logger
}

// NewSessionEndedHandler creates the handler; subscribe it to the event bus
func NewSessionEndedHandler(store *Service, logger *zap.Logger) *SessionEndedHandler {
	return &SessionEndedHandler{store: store, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SessionEndedHandler) EventTypes() []string {
	return []string{identity.EventTypeSessionEnded}
}

// Handle processes a SessionEndedEvent
func (h *SessionEndedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ended, ok := event.(*identity.SessionEndedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			identity.EventTypeSessionEnded, event.EventType())
	}

	id, err := profile.ParseID(ended.ProfileID())
	if err != nil {
		return err
	}

	h.logger.Debug("clearing profile state after session end",
		zap.String("profile_id", id.String()),
		zap.String("reason", string(ended.Reason)))

	return errors.Join(
		h.store.ClearCart(ctx, id),
		h.store.ForgetFlow(ctx, id),
	)
}
