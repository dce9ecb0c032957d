package checkout

import (
	"net/url"
	"strings"
	"time"

	"github.com/autoparts/storefront/internal/domain/cart"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPending, PaymentStatusFailed:
		return true
	}
	return false
}

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid checks if the order status is known
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one line of a server-side order
type OrderItem struct {
	Code        string           `json:"code"`
	Name        string           `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description string           `json:"description,omitempty"`
	Quantity    int              `json:"quantity"`
}

// Amount is price times quantity, zero when the backend sent no price
func (i OrderItem) Amount() decimal.Decimal {
	if i.Price == nil {
		return decimal.Zero
	}
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the backend's purchase record. The storefront only reads it.
type Order struct {
	OrderID       string              `json:"orderID"`
	UserID        string              `json:"userID"`
	UserDetail    identity.UserDetail `json:"userDetail"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	PaymentStatus PaymentStatus       `json:"paymentStatus"`
	Status        OrderStatus         `json:"status"`
	Items         []OrderItem         `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// OrderLine is an item of an order creation request
type OrderLine struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest is the body of POST /order
type CreateOrderRequest struct {
	UserDetailID string      `json:"userDetailID"`
	Items        []OrderLine `json:"items"`
}

// NewCreateOrderRequest snapshots the cart into an order request
func NewCreateOrderRequest(userDetailID string, c *cart.Cart) (CreateOrderRequest, error) {
	if strings.TrimSpace(userDetailID) == "" {
		return CreateOrderRequest{}, ErrNoBuyerDetail
	}
	if c == nil || c.IsEmpty() {
		return CreateOrderRequest{}, ErrEmptyCart
	}
	lines := make([]OrderLine, 0, c.Len())
	for _, item := range c.Items {
		lines = append(lines, OrderLine{Code: item.Code, Quantity: item.Quantity})
	}
	return CreateOrderRequest{UserDetailID: userDetailID, Items: lines}, nil
}

// PaymentSessionRequest is the body of POST /order/stripe-payment
type PaymentSessionRequest struct {
	OrderID    string  `json:"orderID"`
	SuccessURL string  `json:"successURL"`
	CancelURL  string  `json:"cancelURL"`
	Tax        float64 `json:"tax"`
}

// PaymentSession is the hosted checkout page to redirect to
type PaymentSession struct {
	URL string `json:"url"`
}

// Callback paths the payment provider returns the browser to
const (
	SuccessPath   = "/checkout-success"
	CancelledPath = "/checkout-cancelled"
)

// CallbackURLs derives the success and cancel urls from a public origin
func CallbackURLs(origin string) (success, cancel string, err error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", shared.ErrInvalidInput.WithMessage("A valid origin is required to build payment callbacks")
	}
	return origin + SuccessPath, origin + CancelledPath, nil
}

// NewPaymentSessionRequest builds the session request for an order
func NewPaymentSessionRequest(orderID, origin string, taxRate decimal.Decimal) (PaymentSessionRequest, error) {
	if orderID == "" {
		return PaymentSessionRequest{}, ErrNoOrder
	}
	success, cancel, err := CallbackURLs(origin)
	if err != nil {
		return PaymentSessionRequest{}, err
	}
	return PaymentSessionRequest{
		OrderID:    orderID,
		SuccessURL: success,
		CancelURL:  cancel,
		Tax:        taxRate.InexactFloat64(),
	}, nil
}

// OrderFilter narrows order listings
type OrderFilter struct {
	UserID        string
	PaymentStatus PaymentStatus
	Status        OrderStatus
	CreatedAt     string
}

// Validate rejects unknown statuses
func (f OrderFilter) Validate() error {
	if f.PaymentStatus != "" && !f.PaymentStatus.IsValid() {
		return shared.ErrInvalidInput.WithMessage("Unknown payment status")
	}
	if f.Status != "" && !f.Status.IsValid() {
		return shared.ErrInvalidInput.WithMessage("Unknown order status")
	}
	return nil
}

// Values serializes the non-empty filter fields
func (f OrderFilter) Values() url.Values {
	v := url.Values{}
	if f.UserID != "" {
		v.Set("userID", f.UserID)
	}
	if f.PaymentStatus != "" {
		v.Set("paymentStatus", string(f.PaymentStatus))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.CreatedAt != "" {
		v.Set("createdAt", f.CreatedAt)
	}
	return v
}
