package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/autoparts/storefront/internal/application/clientstore"
	"github.com/autoparts/storefront/internal/domain/cart"
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/backend"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/autoparts/storefront/internal/infrastructure/event"
	"github.com/autoparts/storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockBackend is a mock implementation of Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateOrder(ctx context.Context, req checkout.CreateOrderRequest) (checkout.Order, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(checkout.Order), args.Error(1)
}

func (m *MockBackend) CreatePaymentSession(ctx context.Context, req checkout.PaymentSessionRequest) (checkout.PaymentSession, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(checkout.PaymentSession), args.Error(1)
}

type fixture struct {
	svc     *Service
	backend *MockBackend
	store   *clientstore.Service
	id      profile.ID
}

func newFixture(t *testing.T, publicOrigin string) *fixture {
	t.Helper()
	pricer, err := cart.NewPricer(decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	bus := event.NewInMemoryEventBus(zap.NewNop())
	cs := clientstore.NewService(store.NewMemoryStore(time.Hour), bus, pricer, time.Hour, zap.NewNop())
	bus.Subscribe(clientstore.NewSessionEndedHandler(cs, zap.NewNop()))

	qc := cache.NewQueryCache(cache.NewMemoryStore())
	t.Cleanup(func() { _ = qc.Close() })

	b := new(MockBackend)
	return &fixture{
		svc:     NewService(b, cs, qc, publicOrigin, nil, zap.NewNop()),
		backend: b,
		store:   cs,
		id:      profile.NewID(),
	}
}

func (f *fixture) addItem(t *testing.T) {
	t.Helper()
	_, err := f.store.AddItem(context.Background(), f.id, cart.Item{
		ProductID: "p1",
		Code:      "FR-001",
		Name:      "Pastillas de freno",
		UnitPrice: decimal.RequireFromString("10"),
		Quantity:  2,
	})
	require.NoError(t, err)
}

// endSession logs the profile out the way a backend 401 does
func (f *fixture) endSession(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.Logout(context.Background(), f.id, identity.EndReasonUnauthorized))
}

var orderRequest = checkout.CreateOrderRequest{
	UserDetailID: "ud-1",
	Items:        []checkout.OrderLine{{Code: "FR-001", Quantity: 2}},
}

var sessionRequest = checkout.PaymentSessionRequest{
	OrderID:    "o-1",
	SuccessURL: "https://shop.example.com/checkout-success",
	CancelURL:  "https://shop.example.com/checkout-cancelled",
	Tax:        0.15,
}

func TestNext_EmptyCartCannotLeaveCart(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.svc.Next(context.Background(), f.id, NextInput{})
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)

	st, err := f.svc.State(context.Background(), f.id)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepCart, st.Step)
}

func TestNext_FullFlow(t *testing.T) {
	f := newFixture(t, "https://shop.example.com/")
	ctx := context.Background()
	f.addItem(t)

	st, err := f.svc.Next(ctx, f.id, NextInput{})
	require.NoError(t, err)
	assert.Equal(t, checkout.StepBuyerDetails, st.Step)
	assert.Equal(t, "23", st.Summary.Total.String())

	_, err = f.svc.Next(ctx, f.id, NextInput{})
	assert.ErrorIs(t, err, checkout.ErrNoBuyerDetail)

	f.backend.On("CreateOrder", mock.Anything, orderRequest).Return(checkout.Order{OrderID: "o-1"}, nil)
	f.backend.On("CreatePaymentSession", mock.Anything, sessionRequest).
		Return(checkout.PaymentSession{URL: "https://pay.example.com/s/1"}, nil)

	st, err = f.svc.Next(ctx, f.id, NextInput{UserDetailID: "ud-1", Origin: "https://ignored.example.com"})
	require.NoError(t, err)
	assert.Equal(t, checkout.StepPayment, st.Step)
	assert.Equal(t, "o-1", st.OrderID)
	assert.Equal(t, "https://pay.example.com/s/1", st.PaymentURL)
	assert.Empty(t, st.Error)
	f.backend.AssertExpectations(t)

	_, err = f.svc.Next(ctx, f.id, NextInput{})
	assert.ErrorIs(t, err, checkout.ErrInvalidStep)
}

func TestNext_OrderFailureStaysWithInlineError(t *testing.T) {
	f := newFixture(t, "https://shop.example.com")
	ctx := context.Background()
	f.addItem(t)

	_, err := f.svc.Next(ctx, f.id, NextInput{})
	require.NoError(t, err)

	f.backend.On("CreateOrder", mock.Anything, orderRequest).
		Return(checkout.Order{}, &backend.Error{Kind: backend.KindValidation, Status: 400, Message: "Stock insuficiente"}).Once()

	_, err = f.svc.Next(ctx, f.id, NextInput{UserDetailID: "ud-1"})
	require.Error(t, err)

	st, err := f.svc.State(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepBuyerDetails, st.Step)
	assert.Equal(t, "ud-1", st.UserDetailID)
	assert.Equal(t, "Stock insuficiente", st.Error)
	f.backend.AssertNotCalled(t, "CreatePaymentSession", mock.Anything, mock.Anything)

	// a retry needs no re-entry of the address
	f.backend.On("CreateOrder", mock.Anything, orderRequest).Return(checkout.Order{OrderID: "o-1"}, nil)
	f.backend.On("CreatePaymentSession", mock.Anything, sessionRequest).
		Return(checkout.PaymentSession{URL: "https://pay.example.com/s/1"}, nil)

	st, err = f.svc.Next(ctx, f.id, NextInput{})
	require.NoError(t, err)
	assert.Equal(t, checkout.StepPayment, st.Step)
	assert.Empty(t, st.Error)
}

func TestNext_PaymentSessionFailureDropsOrder(t *testing.T) {
	f := newFixture(t, "https://shop.example.com")
	ctx := context.Background()
	f.addItem(t)
	_, err := f.svc.Next(ctx, f.id, NextInput{})
	require.NoError(t, err)

	f.backend.On("CreateOrder", mock.Anything, orderRequest).Return(checkout.Order{OrderID: "o-1"}, nil)
	f.backend.On("CreatePaymentSession", mock.Anything, sessionRequest).
		Return(checkout.PaymentSession{}, &backend.Error{Kind: backend.KindServer, Status: 503, Message: backend.GenericMessage})

	_, err = f.svc.Next(ctx, f.id, NextInput{UserDetailID: "ud-1"})
	require.Error(t, err)

	st, err := f.svc.State(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepBuyerDetails, st.Step)
	assert.Empty(t, st.OrderID)
	assert.Equal(t, backend.GenericMessage, st.Error)
}

func TestNext_UnauthorizedLeavesFlowCleared(t *testing.T) {
	unauthorized := &backend.Error{Kind: backend.KindUnauthorized, Status: 401, Message: "Unauthorized"}

	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture)
	}{
		{
			name: "order creation",
			setup: func(t *testing.T, f *fixture) {
				f.backend.On("CreateOrder", mock.Anything, orderRequest).
					Run(func(mock.Arguments) { f.endSession(t) }).
					Return(checkout.Order{}, unauthorized)
			},
		},
		{
			name: "payment session",
			setup: func(t *testing.T, f *fixture) {
				f.backend.On("CreateOrder", mock.Anything, orderRequest).Return(checkout.Order{OrderID: "o-1"}, nil)
				f.backend.On("CreatePaymentSession", mock.Anything, sessionRequest).
					Run(func(mock.Arguments) { f.endSession(t) }).
					Return(checkout.PaymentSession{}, unauthorized)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "https://shop.example.com")
			ctx := context.Background()
			f.addItem(t)
			_, err := f.svc.Next(ctx, f.id, NextInput{})
			require.NoError(t, err)
			tt.setup(t, f)

			_, err = f.svc.Next(ctx, f.id, NextInput{UserDetailID: "ud-1"})
			assert.True(t, backend.IsUnauthorized(err))

			st, err := f.svc.State(ctx, f.id)
			require.NoError(t, err)
			assert.Equal(t, checkout.StepCart, st.Step)
			assert.Empty(t, st.Error)
			assert.Empty(t, st.OrderID)
			assert.Empty(t, st.Summary.Lines)
		})
	}
}

func TestNext_CartEmptiedAtBuyerDetailsShowsError(t *testing.T) {
	f := newFixture(t, "https://shop.example.com")
	ctx := context.Background()
	f.addItem(t)
	_, err := f.svc.Next(ctx, f.id, NextInput{})
	require.NoError(t, err)
	_, err = f.store.RemoveItem(ctx, f.id, "p1")
	require.NoError(t, err)

	_, err = f.svc.Next(ctx, f.id, NextInput{UserDetailID: "ud-1"})
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)

	st, err := f.svc.State(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepBuyerDetails, st.Step)
	assert.Equal(t, checkout.ErrEmptyCart.Message, st.Error)
	f.backend.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestPayment_UsesRequestOriginWhenUnconfigured(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	f.addItem(t)
	_, err := f.svc.Next(ctx, f.id, NextInput{})
	require.NoError(t, err)

	f.backend.On("CreateOrder", mock.Anything, orderRequest).Return(checkout.Order{OrderID: "o-1"}, nil)
	f.backend.On("CreatePaymentSession", mock.Anything, sessionRequest).
		Return(checkout.PaymentSession{URL: "https://pay.example.com/s/1"}, nil)

	st, err := f.svc.Next(ctx, f.id, NextInput{UserDetailID: "ud-1", Origin: "https://shop.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/1", st.PaymentURL)
}

func TestPayment_RequiresOrder(t *testing.T) {
	f := newFixture(t, "https://shop.example.com")
	_, err := f.svc.Payment(context.Background(), f.id, "")
	assert.ErrorIs(t, err, checkout.ErrNoOrder)
}

func TestBack(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.Back(ctx, f.id)
	assert.ErrorIs(t, err, checkout.ErrInvalidStep)

	f.addItem(t)
	_, err = f.svc.Next(ctx, f.id, NextInput{})
	require.NoError(t, err)
	st, err := f.svc.Back(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepCart, st.Step)
}

func TestSuccess_ClearsCartIdempotently(t *testing.T) {
	f := newFixture(t, "https://shop.example.com")
	ctx := context.Background()
	f.addItem(t)

	conf, err := f.svc.Success(ctx, f.id, "o-9", "paid")
	require.NoError(t, err)
	assert.Equal(t, "o-9", conf.OrderID)
	assert.Equal(t, "paid", conf.Status)

	_, err = f.svc.Success(ctx, f.id, "o-9", "paid")
	require.NoError(t, err)

	c, err := f.store.Cart(ctx, f.id)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCancelled_KeepsCart(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	f.addItem(t)
	_, err := f.svc.Next(ctx, f.id, NextInput{})
	require.NoError(t, err)

	st, err := f.svc.Cancelled(ctx, f.id)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepCart, st.Step)
	assert.Equal(t, 1, len(st.Summary.Lines))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "x", errorMessage(&backend.Error{Kind: backend.KindValidation, Message: "x"}))
	assert.Equal(t, "Resource not found", errorMessage(shared.ErrNotFound))
	assert.Equal(t, backend.GenericMessage, errorMessage(context.Canceled))
}
