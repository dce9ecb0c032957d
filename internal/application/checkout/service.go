// Package checkout drives the Cart → BuyerDetails → Payment flow of a
// profile, creating the order and the hosted payment session on the
// backend.
package checkout

import (
	"context"
	"errors"

	"github.com/autoparts/storefront/internal/domain/cart"
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/backend"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/autoparts/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Backend creates orders and payment sessions
type Backend interface {
	CreateOrder(ctx context.Context, req checkout.CreateOrderRequest) (checkout.Order, error)
	CreatePaymentSession(ctx context.Context, req checkout.PaymentSessionRequest) (checkout.PaymentSession, error)
}

// ClientStore holds the profile's cart and flow
type ClientStore interface {
	Cart(ctx context.Context, id profile.ID) (*cart.Cart, error)
	Summary(ctx context.Context, id profile.ID) (cart.Summary, error)
	ClearCart(ctx context.Context, id profile.ID) error
	Flow(ctx context.Context, id profile.ID) (*checkout.Flow, error)
	UpdateFlow(ctx context.Context, id profile.ID, fn func(f *checkout.Flow) error) (*checkout.Flow, error)
	ResetFlow(ctx context.Context, id profile.ID) error
	Pricer() *cart.Pricer
}

// Checkout metric events
const (
	eventOrderCreated    = "order_created"
	eventOrderFailed     = "order_failed"
	eventPaymentSession  = "payment_session"
	eventPaymentFailed   = "payment_session_failed"
	eventPaymentSuccess  = "success"
	eventPaymentCanceled = "cancelled"
)

type Service struct {
	backend      Backend
	store        ClientStore
	cache        *cache.QueryCache
	publicOrigin string
	metrics      *telemetry.Metrics
	logger       *zap.Logger
}

func NewService(backend Backend, store ClientStore, queryCache *cache.QueryCache, publicOrigin string, metrics *telemetry.Metrics, logger *zap.Logger) *Service {
	return &Service{
		backend:      backend,
		store:        store,
		cache:        queryCache,
		publicOrigin: publicOrigin,
		metrics:      metrics,
		logger:       logger.Named("checkout"),
	}
}

// State returns the flow together with the priced cart
func (s *Service) State(ctx context.Context, id profile.ID) (*State, error) {
	flow, err := s.store.Flow(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.state(ctx, id, flow)
}

// Next advances one step. From BuyerDetails it creates the order and then
// the payment session; origin is the request Origin header, used when no
// public origin is configured.
func (s *Service) Next(ctx context.Context, id profile.ID, input NextInput) (*State, error) {
	flow, err := s.store.Flow(ctx, id)
	if err != nil {
		return nil, err
	}

	switch flow.Step {
	case checkout.StepCart:
		c, err := s.store.Cart(ctx, id)
		if err != nil {
			return nil, err
		}
		flow, err = s.store.UpdateFlow(ctx, id, func(f *checkout.Flow) error {
			return f.ToBuyerDetails(c.IsEmpty())
		})
		if err != nil {
			return nil, err
		}
		return s.state(ctx, id, flow)

	case checkout.StepBuyerDetails:
		if input.UserDetailID != "" {
			if flow, err = s.store.UpdateFlow(ctx, id, func(f *checkout.Flow) error {
				return f.SelectBuyerDetail(input.UserDetailID)
			}); err != nil {
				return nil, err
			}
		}
		if err := flow.CanCreateOrder(); err != nil {
			return nil, err
		}
		if err := s.createOrder(ctx, id, flow.UserDetailID); err != nil {
			return nil, err
		}
		return s.Payment(ctx, id, input.Origin)

	default:
		return nil, checkout.ErrInvalidStep.WithMessage("La orden ya fue creada, continúa con el pago")
	}
}

// createOrder snapshots the cart into an order. The backend calls run
// outside the profile lock since a 401 tears the session down under it.
func (s *Service) createOrder(ctx context.Context, id profile.ID, userDetailID string) error {
	c, err := s.store.Cart(ctx, id)
	if err != nil {
		return err
	}
	req, err := checkout.NewCreateOrderRequest(userDetailID, c)
	if err != nil {
		return s.recordOrderFailure(ctx, id, err)
	}

	order, err := s.backend.CreateOrder(ctx, req)
	if err != nil {
		s.metrics.ObserveCheckout(eventOrderFailed)
		logger.L(ctx).Warn("Order creation failed", zap.Error(err))
		if backend.IsUnauthorized(err) {
			// the session teardown already cleared the flow
			return err
		}
		return s.recordOrderFailure(ctx, id, err)
	}

	s.metrics.ObserveCheckout(eventOrderCreated)
	s.invalidateOrders(ctx)
	logger.L(ctx).Info("Order created",
		zap.String("order_id", order.OrderID),
		zap.Int("items", len(req.Items)))

	_, err = s.store.UpdateFlow(ctx, id, func(f *checkout.Flow) error {
		return f.OrderCreated(order.OrderID)
	})
	return err
}

// recordOrderFailure shows err inline on the BuyerDetails step and returns it
func (s *Service) recordOrderFailure(ctx context.Context, id profile.ID, err error) error {
	if _, saveErr := s.store.UpdateFlow(ctx, id, func(f *checkout.Flow) error {
		f.OrderFailed(errorMessage(err))
		return nil
	}); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	return err
}

// Payment requests the hosted payment page for the pending order. It can
// be called again to get a fresh session.
func (s *Service) Payment(ctx context.Context, id profile.ID, origin string) (*State, error) {
	flow, err := s.store.Flow(ctx, id)
	if err != nil {
		return nil, err
	}
	if flow.Step != checkout.StepPayment || flow.OrderID == "" {
		return nil, checkout.ErrNoOrder
	}

	req, err := checkout.NewPaymentSessionRequest(flow.OrderID, s.origin(origin), s.store.Pricer().TaxRate())
	if err != nil {
		return nil, err
	}

	session, err := s.backend.CreatePaymentSession(ctx, req)
	if err != nil {
		s.metrics.ObserveCheckout(eventPaymentFailed)
		logger.L(ctx).Warn("Payment session creation failed",
			zap.String("order_id", flow.OrderID),
			zap.Error(err))
		if backend.IsUnauthorized(err) {
			return nil, err
		}
		if _, saveErr := s.store.UpdateFlow(ctx, id, func(f *checkout.Flow) error {
			f.PaymentSessionFailed(flow.OrderID, errorMessage(err))
			return nil
		}); saveErr != nil {
			return nil, errors.Join(err, saveErr)
		}
		return nil, err
	}
	s.metrics.ObserveCheckout(eventPaymentSession)

	flow, err = s.store.UpdateFlow(ctx, id, func(f *checkout.Flow) error {
		return f.PaymentSessionCreated(session.URL)
	})
	if err != nil {
		return nil, err
	}
	return s.state(ctx, id, flow)
}

// Back moves one step back
func (s *Service) Back(ctx context.Context, id profile.ID) (*State, error) {
	flow, err := s.store.UpdateFlow(ctx, id, func(f *checkout.Flow) error {
		return f.Back()
	})
	if err != nil {
		return nil, err
	}
	return s.state(ctx, id, flow)
}

// Success handles the payment provider's success redirect. Clearing the
// cart is unconditional so a repeated callback is harmless.
func (s *Service) Success(ctx context.Context, id profile.ID, orderID, status string) (*Confirmation, error) {
	flow, err := s.store.Flow(ctx, id)
	if err != nil {
		return nil, err
	}
	if orderID == "" {
		orderID = flow.OrderID
	}
	if err := s.store.ClearCart(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.ResetFlow(ctx, id); err != nil {
		return nil, err
	}
	s.metrics.ObserveCheckout(eventPaymentSuccess)
	s.invalidateOrders(ctx)
	logger.L(ctx).Info("Checkout completed",
		zap.String("order_id", orderID),
		zap.String("status", status))
	return &Confirmation{OrderID: orderID, Status: status}, nil
}

// Cancelled handles the cancel redirect; the cart is kept
func (s *Service) Cancelled(ctx context.Context, id profile.ID) (*State, error) {
	if err := s.store.ResetFlow(ctx, id); err != nil {
		return nil, err
	}
	s.metrics.ObserveCheckout(eventPaymentCanceled)
	return s.State(ctx, id)
}

func (s *Service) state(ctx context.Context, id profile.ID, flow *checkout.Flow) (*State, error) {
	summary, err := s.store.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return newState(flow, summary), nil
}

func (s *Service) origin(requestOrigin string) string {
	if s.publicOrigin != "" {
		return s.publicOrigin
	}
	return requestOrigin
}

func (s *Service) invalidateOrders(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.GroupOrders); err != nil {
		logger.L(ctx).Error("Cache invalidation failed", zap.String("group", string(cache.GroupOrders)), zap.Error(err))
	}
}

// errorMessage is what the buyer sees inline on the flow
func errorMessage(err error) string {
	if be, ok := backend.AsError(err); ok && be.Message != "" {
		return be.Message
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return backend.GenericMessage
}
