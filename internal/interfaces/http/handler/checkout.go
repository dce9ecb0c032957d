package handler

import (
	"net/http"
	"net/url"

	appcheckout "github.com/autoparts/storefront/internal/application/checkout"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler drives the checkout step flow
type CheckoutHandler struct {
	BaseHandler
	checkoutService *appcheckout.Service
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *appcheckout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// NextRequest represents the advance body. userDetailId selects the buyer
// detail when leaving the buyer details step.
type NextRequest struct {
	UserDetailID string `json:"userDetailId" form:"userDetailId" binding:"omitempty,max=64"`
}

// State godoc
// @Summary      Checkout state
// @Tags         checkout
// @Produce      json
// @Success      200 {object} dto.Response{data=appcheckout.State}
// @Router       /checkout [get]
func (h *CheckoutHandler) State(c *gin.Context) {
	state, err := h.checkoutService.State(c.Request.Context(), profileID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// Next godoc
// @Summary      Advance checkout
// @Description  Cart to buyer details; buyer details to payment (creates the order and the payment session)
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body NextRequest false "Buyer detail"
// @Success      200 {object} dto.Response{data=appcheckout.State}
// @Success      303
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout/next [post]
func (h *CheckoutHandler) Next(c *gin.Context) {
	var req NextRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	state, err := h.checkoutService.Next(c.Request.Context(), profileID(c), appcheckout.NextInput{
		UserDetailID: req.UserDetailID,
		Origin:       c.GetHeader("Origin"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, state)
}

// Payment godoc
// @Summary      Request a new payment session
// @Description  Re-creates the hosted payment page for the pending order
// @Tags         checkout
// @Produce      json
// @Success      200 {object} dto.Response{data=appcheckout.State}
// @Success      303
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout/payment [post]
func (h *CheckoutHandler) Payment(c *gin.Context) {
	state, err := h.checkoutService.Payment(c.Request.Context(), profileID(c), c.GetHeader("Origin"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, state)
}

// Back godoc
// @Summary      Go back one step
// @Tags         checkout
// @Produce      json
// @Success      200 {object} dto.Response{data=appcheckout.State}
// @Router       /checkout/back [post]
func (h *CheckoutHandler) Back(c *gin.Context) {
	state, err := h.checkoutService.Back(c.Request.Context(), profileID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// PaymentSucceeded godoc
// @Summary      Payment success callback
// @Description  Clears the cart and resets the flow; repeated calls are harmless
// @Tags         checkout
// @Produce      json
// @Param        orderId query string false "Order ID"
// @Param        status query string false "Provider status"
// @Success      200 {object} dto.Response{data=appcheckout.Confirmation}
// @Success      302
// @Router       /checkout/success [get]
func (h *CheckoutHandler) PaymentSucceeded(c *gin.Context) {
	confirmation, err := h.checkoutService.Success(c.Request.Context(), profileID(c), c.Query("orderId"), c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if wantsHTML(c) {
		q := url.Values{"status": {"success"}, "orderId": {confirmation.OrderID}}
		c.Redirect(http.StatusFound, "/?"+q.Encode())
		return
	}
	h.Success(c, confirmation)
}

// PaymentCancelled godoc
// @Summary      Payment cancelled callback
// @Description  Resets the flow and keeps the cart
// @Tags         checkout
// @Produce      json
// @Success      200 {object} dto.Response{data=appcheckout.State}
// @Success      302
// @Router       /checkout/cancelled [get]
func (h *CheckoutHandler) PaymentCancelled(c *gin.Context) {
	state, err := h.checkoutService.Cancelled(c.Request.Context(), profileID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, "/?status=cancelled")
		return
	}
	h.Success(c, state)
}

// respond sends browsers straight to the payment page once there is one
func (h *CheckoutHandler) respond(c *gin.Context, state *appcheckout.State) {
	if state.PaymentURL != "" && wantsRedirect(c) {
		c.Redirect(http.StatusSeeOther, state.PaymentURL)
		return
	}
	h.Success(c, state)
}
