// Package checkout models the checkout step flow and the order payloads.
package checkout

import (
	"time"

	"github.com/autoparts/storefront/internal/domain/shared"
)

// Checkout errors
var (
	ErrEmptyCart     = shared.NewDomainError("EMPTY_CART", "El carrito está vacío")
	ErrNoBuyerDetail = shared.NewDomainError("NO_BUYER_DETAIL", "Por favor selecciona una dirección de envío")
	ErrNoOrder       = shared.NewDomainError("NO_ORDER", "No hay una orden pendiente de pago")
	ErrInvalidStep   = shared.NewDomainError("INVALID_STEP", "Paso de checkout no permitido")
)

// Step is a state of the checkout flow
type Step string

const (
	StepCart         Step = "cart"
	StepBuyerDetails Step = "buyer_details"
	StepPayment      Step = "payment"
)

var stepOrder = []Step{StepCart, StepBuyerDetails, StepPayment}

// Index returns the zero-based position of the step
func (s Step) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// IsValid checks if the step is known
func (s Step) IsValid() bool {
	return s.Index() >= 0
}

// Flow is the per-profile checkout progress.
// Error holds the last failure so the buyer can retry without re-entering data.
type Flow struct {
	Step         Step      `json:"step"`
	UserDetailID string    `json:"userDetailId,omitempty"`
	OrderID      string    `json:"orderId,omitempty"`
	PaymentURL   string    `json:"paymentUrl,omitempty"`
	Error        string    `json:"error,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewFlow starts a flow at the cart step
func NewFlow() *Flow {
	return &Flow{Step: StepCart, UpdatedAt: time.Now()}
}

// ToBuyerDetails moves from Cart to BuyerDetails. Guarded by a non-empty cart.
func (f *Flow) ToBuyerDetails(cartEmpty bool) error {
	if f.Step != StepCart {
		return ErrInvalidStep.WithMessage("Solo se puede avanzar a los datos del comprador desde el carrito")
	}
	if cartEmpty {
		return ErrEmptyCart
	}
	f.Step = StepBuyerDetails
	f.Error = ""
	f.touch()
	return nil
}

// SelectBuyerDetail records the chosen address
func (f *Flow) SelectBuyerDetail(userDetailID string) error {
	if f.Step != StepBuyerDetails {
		return ErrInvalidStep.WithMessage("La dirección se selecciona en el paso de datos del comprador")
	}
	f.UserDetailID = userDetailID
	f.touch()
	return nil
}

// CanCreateOrder checks the BuyerDetails -> Payment guard
func (f *Flow) CanCreateOrder() error {
	if f.Step != StepBuyerDetails {
		return ErrInvalidStep.WithMessage("La orden se crea desde el paso de datos del comprador")
	}
	if f.UserDetailID == "" {
		return ErrNoBuyerDetail
	}
	return nil
}

// OrderCreated completes BuyerDetails -> Payment
func (f *Flow) OrderCreated(orderID string) error {
	if err := f.CanCreateOrder(); err != nil {
		return err
	}
	f.Step = StepPayment
	f.OrderID = orderID
	f.PaymentURL = ""
	f.Error = ""
	f.touch()
	return nil
}

// OrderFailed keeps the flow at BuyerDetails and records the error inline.
// A flow that has left BuyerDetails in the meantime is not touched.
func (f *Flow) OrderFailed(message string) {
	if f.Step != StepBuyerDetails {
		return
	}
	f.Error = message
	f.touch()
}

// PaymentSessionCreated records the hosted page url
func (f *Flow) PaymentSessionCreated(url string) error {
	if f.Step != StepPayment || f.OrderID == "" {
		return ErrNoOrder
	}
	f.PaymentURL = url
	f.Error = ""
	f.touch()
	return nil
}

// PaymentSessionFailed forgets the created order and returns to
// BuyerDetails with the error. The order stays Pending on the backend.
// Nothing changes unless the flow is still at Payment for orderID.
func (f *Flow) PaymentSessionFailed(orderID, message string) {
	if f.Step != StepPayment || f.OrderID != orderID {
		return
	}
	f.Step = StepBuyerDetails
	f.OrderID = ""
	f.PaymentURL = ""
	f.Error = message
	f.touch()
}

// Back moves one step backwards. Leaving Payment forgets the order.
func (f *Flow) Back() error {
	switch f.Step {
	case StepBuyerDetails:
		f.Step = StepCart
	case StepPayment:
		f.Step = StepBuyerDetails
		f.OrderID = ""
		f.PaymentURL = ""
	default:
		return ErrInvalidStep.WithMessage("Ya estás en el primer paso")
	}
	f.Error = ""
	f.touch()
	return nil
}

// Reset returns to the cart step, keeping the selected address
func (f *Flow) Reset() {
	f.Step = StepCart
	f.OrderID = ""
	f.PaymentURL = ""
	f.Error = ""
	f.touch()
}

func (f *Flow) touch() {
	f.UpdatedAt = time.Now()
}
