package checkout

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderRequest(t *testing.T) {
	c := cartWith(t, 3)

	req, err := NewCreateOrderRequest("ud-1", c)
	require.NoError(t, err)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userDetailID":"ud-1","items":[{"code":"FR-001","quantity":3}]}`, string(body))

	_, err = NewCreateOrderRequest("", c)
	assert.ErrorIs(t, err, ErrNoBuyerDetail)

	_, err = NewCreateOrderRequest("ud-1", cartWith(t, 0))
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCallbackURLs(t *testing.T) {
	success, cancel, err := CallbackURLs("https://tienda.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://tienda.example.com/checkout-success", success)
	assert.Equal(t, "https://tienda.example.com/checkout-cancelled", cancel)

	_, _, err = CallbackURLs("not a url")
	assert.Error(t, err)
}

func TestNewPaymentSessionRequest(t *testing.T) {
	req, err := NewPaymentSessionRequest("o-1", "http://localhost:5173", decimal.RequireFromString("0.15"))
	require.NoError(t, err)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"orderID": "o-1",
		"successURL": "http://localhost:5173/checkout-success",
		"cancelURL": "http://localhost:5173/checkout-cancelled",
		"tax": 0.15
	}`, string(body))

	_, err = NewPaymentSessionRequest("", "http://localhost", decimal.Zero)
	assert.ErrorIs(t, err, ErrNoOrder)
}

func TestOrder_Decode(t *testing.T) {
	payload := `{
		"orderID": "o-1",
		"userID": "u-1",
		"userDetail": {"firstName": "Ana", "lastName": "Pérez", "city": "Lima"},
		"totalPrice": 34.5,
		"paymentStatus": "Pending",
		"status": "PENDING",
		"items": [{"code": "FR-001", "price": 11.5, "quantity": 3}],
		"createdAt": "2024-05-01T10:00:00.000Z",
		"updatedAt": "2024-05-01T10:00:00.000Z"
	}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(payload), &o))

	assert.True(t, o.PaymentStatus.IsValid())
	assert.True(t, o.Status.IsValid())
	assert.Equal(t, "Ana Pérez", o.UserDetail.FullName())
	require.Len(t, o.Items, 1)
	assert.Equal(t, "34.5", o.Items[0].Amount().String())
}

func TestOrderFilter(t *testing.T) {
	f := OrderFilter{PaymentStatus: PaymentStatusPaid, Status: OrderStatusDelivered}
	require.NoError(t, f.Validate())
	v := f.Values()
	assert.Equal(t, "Paid", v.Get("paymentStatus"))
	assert.Equal(t, "DELIVERED", v.Get("status"))
	assert.False(t, v.Has("userID"))

	assert.Error(t, OrderFilter{Status: "LOST"}.Validate())
}
