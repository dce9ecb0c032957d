// Package clientstore holds the per-profile client state: the auth
// session, the cart and the checkout progress. Every document lives in a
// profile.Store under a fixed key and every read-modify-write of one
// profile is serialized.
package clientstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/autoparts/storefront/internal/domain/cart"
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Service is the client store. It is built once in main and shared by
// all handlers.
type Service struct {
	store  profile.Store
	events shared.EventPublisher
	pricer *cart.Pricer
	ttl    time.Duration
	locks  *profileLocks
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a client store over store. ttl is the retention
// renewed on every touch.
func NewService(
	store profile.Store,
	events shared.EventPublisher,
	pricer *cart.Pricer,
	ttl time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:  store,
		events: events,
		pricer: pricer,
		ttl:    ttl,
		locks:  newProfileLocks(),
		now:    time.Now,
		logger: logger.Named("clientstore"),
	}
}

// Pricer returns the pricing engine used for cart summaries
func (s *Service) Pricer() *cart.Pricer {
	return s.pricer
}

// Touch renews the retention of the profile's documents
func (s *Service) Touch(ctx context.Context, id profile.ID) error {
	if err := s.store.Touch(ctx, id, s.ttl); err != nil {
		return fmt.Errorf("failed to touch profile: %w", err)
	}
	return nil
}

// Session returns the active session of the profile, or nil when signed
// out. A session whose token has expired is torn down like a logout.
func (s *Service) Session(ctx context.Context, id profile.ID) (*identity.Session, error) {
	var session identity.Session
	found, err := s.load(ctx, id, profile.KeyAuth, &session)
	if err != nil || !found {
		return nil, err
	}
	if !session.IsAuthenticated || session.Token == "" {
		return nil, nil
	}
	if session.Expired(s.now()) {
		logger.L(ctx).Info("Session token expired, signing out")
		if err := s.Logout(ctx, id, identity.EndReasonExpired); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &session, nil
}

// SetAuth replaces the profile's session
func (s *Service) SetAuth(ctx context.Context, id profile.ID, token string, user identity.User) (*identity.Session, error) {
	session, err := identity.NewSession(token, user)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	err = s.save(ctx, id, profile.KeyAuth, session)
	unlock()
	if err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, identity.NewSessionStartedEvent(id.String(), user.ID)); err != nil {
		s.logger.Warn("Session started handlers failed", zap.Error(err))
	}
	return session, nil
}

// Logout removes the session and announces it. Subscribers clear the cart
// and the checkout progress; their failure fails the logout.
func (s *Service) Logout(ctx context.Context, id profile.ID, reason identity.EndReason) error {
	unlock := s.locks.Lock(id)
	err := s.store.Delete(ctx, id, profile.KeyAuth)
	unlock()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	logger.L(ctx).Info("Session ended", zap.String("reason", string(reason)))
	if err := s.events.Publish(ctx, identity.NewSessionEndedEvent(id.String(), reason)); err != nil {
		return fmt.Errorf("failed to reset profile after logout: %w", err)
	}
	return nil
}

// Cart returns the profile's cart; a missing cart is empty
func (s *Service) Cart(ctx context.Context, id profile.ID) (*cart.Cart, error) {
	c := cart.New()
	if _, err := s.load(ctx, id, profile.KeyCart, c); err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	return c, nil
}

// AddItem merges item into the cart
func (s *Service) AddItem(ctx context.Context, id profile.ID, item cart.Item) (*cart.Cart, error) {
	return s.updateCart(ctx, id, func(c *cart.Cart) error {
		return c.AddItem(item)
	})
}

// RemoveItem drops a line; removing an absent line is not an error
func (s *Service) RemoveItem(ctx context.Context, id profile.ID, productID string) (*cart.Cart, error) {
	return s.updateCart(ctx, id, func(c *cart.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

// UpdateQuantity sets a line's quantity; qty <= 0 removes the line
func (s *Service) UpdateQuantity(ctx context.Context, id profile.ID, productID string, qty int) (*cart.Cart, error) {
	return s.updateCart(ctx, id, func(c *cart.Cart) error {
		return c.UpdateQuantity(productID, qty)
	})
}

// ClearCart empties the cart. Idempotent.
func (s *Service) ClearCart(ctx context.Context, id profile.ID) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.save(ctx, id, profile.KeyCart, cart.New())
}

// Summary prices the current cart. Nothing is cached; every call
// recomputes from the stored items.
func (s *Service) Summary(ctx context.Context, id profile.ID) (cart.Summary, error) {
	c, err := s.Cart(ctx, id)
	if err != nil {
		return cart.Summary{}, err
	}
	return s.pricer.Summarize(c.Items), nil
}

// Flow returns the checkout progress, starting a new one when absent
func (s *Service) Flow(ctx context.Context, id profile.ID) (*checkout.Flow, error) {
	f := checkout.NewFlow()
	found, err := s.load(ctx, id, profile.KeyCheckout, f)
	if err != nil {
		return nil, err
	}
	if !found || !f.Step.IsValid() {
		return checkout.NewFlow(), nil
	}
	return f, nil
}

// UpdateFlow runs fn on the stored flow under the profile lock and saves
// the result even when fn fails, so recorded errors survive.
func (s *Service) UpdateFlow(ctx context.Context, id profile.ID, fn func(f *checkout.Flow) error) (*checkout.Flow, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	f, err := s.Flow(ctx, id)
	if err != nil {
		return nil, err
	}
	fnErr := fn(f)
	if err := s.save(ctx, id, profile.KeyCheckout, f); err != nil {
		return nil, err
	}
	return f, fnErr
}

// ResetFlow rewinds the checkout to the cart step
func (s *Service) ResetFlow(ctx context.Context, id profile.ID) error {
	_, err := s.UpdateFlow(ctx, id, func(f *checkout.Flow) error {
		f.Reset()
		return nil
	})
	return err
}

// ForgetFlow drops the checkout progress entirely, selected address included
func (s *Service) ForgetFlow(ctx context.Context, id profile.ID) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	if err := s.store.Delete(ctx, id, profile.KeyCheckout); err != nil {
		return fmt.Errorf("failed to delete checkout progress: %w", err)
	}
	return nil
}

func (s *Service) updateCart(ctx context.Context, id profile.ID, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.Cart(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.save(ctx, id, profile.KeyCart, c); err != nil {
		return nil, err
	}
	return c, nil
}

// load decodes the document under key into v. An undecodable document is
// logged and treated as absent.
func (s *Service) load(ctx context.Context, id profile.ID, key string, v any) (bool, error) {
	raw, found, err := s.store.Get(ctx, id, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.L(ctx).Warn("Discarding unreadable profile document",
			zap.String("key", key),
			zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Service) save(ctx context.Context, id profile.ID, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Put(ctx, id, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
