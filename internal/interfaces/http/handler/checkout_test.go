package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	appcheckout "github.com/autoparts/storefront/internal/application/checkout"
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withOrderBackend(env *testEnv, orders *atomic.Int32) {
	env.backend.HandleFunc("POST /api/v1/order", func(w http.ResponseWriter, r *http.Request) {
		var req checkout.CreateOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.UserDetailID != "ud-1" || len(req.Items) == 0 {
			writeJSON(w, http.StatusBadRequest, `{"message":"Pedido inválido"}`)
			return
		}
		orders.Add(1)
		writeJSON(w, http.StatusCreated, `{"orderID":"o-1","userID":"u1","status":"PENDING","paymentStatus":"PENDING"}`)
	})
	env.backend.HandleFunc("POST /api/v1/order/stripe-payment", func(w http.ResponseWriter, r *http.Request) {
		var req checkout.PaymentSessionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.SuccessURL != "https://shop.example.com/checkout-success" {
			writeJSON(w, http.StatusBadRequest, `{"message":"bad callback"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"url":"https://pay.example.com/s/1"}`)
	})
}

func TestCheckoutHandler_RequiresSession(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/v1/checkout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decode(t, w).Error.Code)
}

func TestCheckoutHandler_EmptyCartCannotAdvance(t *testing.T) {
	env := newTestEnv(t)
	env.signIn("user")

	w := env.do(http.MethodPost, "/api/v1/checkout/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeEmptyCart, decode(t, w).Error.Code)

	state := decodeData[appcheckout.State](t, env.do(http.MethodGet, "/api/v1/checkout", nil))
	assert.Equal(t, checkout.StepCart, state.Step)
}

func TestCheckoutHandler_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	var orders atomic.Int32
	withSparePart(env, nil)
	withOrderBackend(env, &orders)
	env.signIn("user")

	env.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"sparePartId": "p1", "quantity": 2})

	state := decodeData[appcheckout.State](t, env.do(http.MethodPost, "/api/v1/checkout/next", nil))
	assert.Equal(t, checkout.StepBuyerDetails, state.Step)
	assert.Equal(t, 1, state.StepIndex)

	w := env.do(http.MethodPost, "/api/v1/checkout/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeNoBuyerDetail, decode(t, w).Error.Code)

	w = env.do(http.MethodPost, "/api/v1/checkout/next", map[string]string{"userDetailId": "ud-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state = decodeData[appcheckout.State](t, w)
	assert.Equal(t, checkout.StepPayment, state.Step)
	assert.Equal(t, "o-1", state.OrderID)
	assert.Equal(t, "https://pay.example.com/s/1", state.PaymentURL)
	assert.Equal(t, "23", state.Summary.Total.String())
	assert.Equal(t, int32(1), orders.Load())

	// the order exists; advancing again must not create another
	w = env.do(http.MethodPost, "/api/v1/checkout/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidStep, decode(t, w).Error.Code)
	assert.Equal(t, int32(1), orders.Load())

	w = env.do(http.MethodPost, "/api/v1/checkout/payment", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/checkout/success?orderId=o-1&status=success", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmation := decodeData[appcheckout.Confirmation](t, w)
	assert.Equal(t, "o-1", confirmation.OrderID)

	cart := decodeData[CartResponse](t, env.do(http.MethodGet, "/api/v1/cart", nil))
	assert.Empty(t, cart.Items)
	state = decodeData[appcheckout.State](t, env.do(http.MethodGet, "/api/v1/checkout", nil))
	assert.Equal(t, checkout.StepCart, state.Step)

	// a repeated callback is harmless
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/checkout/success?orderId=o-1", nil).Code)
}

func TestCheckoutHandler_FormPostRedirectsToPayment(t *testing.T) {
	env := newTestEnv(t)
	var orders atomic.Int32
	withSparePart(env, nil)
	withOrderBackend(env, &orders)
	env.signIn("user")
	env.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"sparePartId": "p1"})
	env.do(http.MethodPost, "/api/v1/checkout/next", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/next", strings.NewReader("userDetailId=ud-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := env.serve(req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://pay.example.com/s/1", w.Header().Get("Location"))
}

func TestCheckoutHandler_OrderFailureKeepsStep(t *testing.T) {
	env := newTestEnv(t)
	var orders atomic.Int32
	withSparePart(env, nil)
	withOrderBackend(env, &orders)
	env.signIn("user")
	env.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"sparePartId": "p1"})
	env.do(http.MethodPost, "/api/v1/checkout/next", nil)

	w := env.do(http.MethodPost, "/api/v1/checkout/next", map[string]string{"userDetailId": "ud-unknown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Pedido inválido", decode(t, w).Error.Message)

	state := decodeData[appcheckout.State](t, env.do(http.MethodGet, "/api/v1/checkout", nil))
	assert.Equal(t, checkout.StepBuyerDetails, state.Step)
	assert.Equal(t, "Pedido inválido", state.Error)
	assert.Empty(t, state.OrderID)
}

func TestCheckoutHandler_BackAndCancelled(t *testing.T) {
	env := newTestEnv(t)
	withSparePart(env, nil)
	env.signIn("user")
	env.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"sparePartId": "p1"})
	env.do(http.MethodPost, "/api/v1/checkout/next", nil)

	state := decodeData[appcheckout.State](t, env.do(http.MethodPost, "/api/v1/checkout/back", nil))
	assert.Equal(t, checkout.StepCart, state.Step)

	env.do(http.MethodPost, "/api/v1/checkout/next", nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/cancelled", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := env.serve(req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?status=cancelled", w.Header().Get("Location"))

	state = decodeData[appcheckout.State](t, env.do(http.MethodGet, "/api/v1/checkout", nil))
	assert.Equal(t, checkout.StepCart, state.Step)
	cart := decodeData[CartResponse](t, env.do(http.MethodGet, "/api/v1/cart", nil))
	assert.Len(t, cart.Items, 1, "cancelling keeps the cart")
}

func TestCheckoutHandler_PaymentSucceededAfterSessionLapsed(t *testing.T) {
	env := newTestEnv(t)
	withSparePart(env, nil)
	env.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"sparePartId": "p1"})

	w := env.do(http.MethodGet, "/checkout-success?orderId=o-1&status=success", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmation := decodeData[appcheckout.Confirmation](t, w)
	assert.Equal(t, "o-1", confirmation.OrderID)
	assert.Equal(t, "success", confirmation.Status)

	cart := decodeData[CartResponse](t, env.do(http.MethodGet, "/api/v1/cart", nil))
	assert.Empty(t, cart.Items)

	req := httptest.NewRequest(http.MethodGet, "/checkout-cancelled", nil)
	req.Header.Set("Accept", "text/html")
	w = env.serve(req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?status=cancelled", w.Header().Get("Location"))
}

func TestCheckoutHandler_PaymentWithoutOrder(t *testing.T) {
	env := newTestEnv(t)
	env.signIn("user")
	w := env.do(http.MethodPost, "/api/v1/checkout/payment", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeNoOrder, decode(t, w).Error.Code)
}
