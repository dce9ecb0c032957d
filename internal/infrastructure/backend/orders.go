package backend

import (
	"context"
	"net/http"

	"github.com/autoparts/storefront/internal/domain/checkout"
)

func (c *Client) CreateOrder(ctx context.Context, req checkout.CreateOrderRequest) (checkout.Order, error) {
	var order checkout.Order
	err := c.send(ctx, http.MethodPost, "order", "/order", req, &order)
	return order, err
}

func (c *Client) ListOrders(ctx context.Context, filter checkout.OrderFilter) ([]checkout.Order, error) {
	var orders []checkout.Order
	err := c.get(ctx, "order", "/order", filter.Values(), &orders)
	return orders, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (checkout.Order, error) {
	var order checkout.Order
	err := c.get(ctx, "order", pathID("/order", id), nil, &order)
	return order, err
}

// CreatePaymentSession asks the backend for a hosted payment page
func (c *Client) CreatePaymentSession(ctx context.Context, req checkout.PaymentSessionRequest) (checkout.PaymentSession, error) {
	var session checkout.PaymentSession
	err := c.send(ctx, http.MethodPost, "payment-session", "/order/stripe-payment", req, &session)
	return session, err
}
