package checkout

import (
	"github.com/autoparts/storefront/internal/domain/cart"
	"github.com/autoparts/storefront/internal/domain/checkout"
)

// NextInput carries what advancing may need
type NextInput struct {
	UserDetailID string
	Origin       string
}

// State is the checkout screen: where the flow is and what it costs
type State struct {
	Step         checkout.Step `json:"step"`
	StepIndex    int           `json:"stepIndex"`
	UserDetailID string        `json:"userDetailId,omitempty"`
	OrderID      string        `json:"orderId,omitempty"`
	PaymentURL   string        `json:"paymentUrl,omitempty"`
	Error        string        `json:"error,omitempty"`
	Summary      cart.Summary  `json:"summary"`
	TotalLabel   string        `json:"totalLabel"`
}

func newState(f *checkout.Flow, summary cart.Summary) *State {
	return &State{
		Step:         f.Step,
		StepIndex:    f.Step.Index(),
		UserDetailID: f.UserDetailID,
		OrderID:      f.OrderID,
		PaymentURL:   f.PaymentURL,
		Error:        f.Error,
		Summary:      summary,
		TotalLabel:   cart.FormatPrice(summary.Total),
	}
}

// Confirmation echoes the payment provider's callback parameters
type Confirmation struct {
	OrderID string `json:"orderId,omitempty"`
	Status  string `json:"status,omitempty"`
}
