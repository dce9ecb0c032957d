package handler

import (
	"github.com/autoparts/storefront/internal/application/account"
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves the signed-in user's addresses and orders
type AccountHandler struct {
	BaseHandler
	accountService *account.Service
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *account.Service) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// OrderListRequest represents the order listing query string
type OrderListRequest struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"paymentStatus"`
	CreatedAt     string `form:"createdAt" binding:"omitempty,datetime=2006-01-02"`
}

// Filter converts the request into an order filter
func (r OrderListRequest) Filter() checkout.OrderFilter {
	return checkout.OrderFilter{
		Status:        checkout.OrderStatus(r.Status),
		PaymentStatus: checkout.PaymentStatus(r.PaymentStatus),
		CreatedAt:     r.CreatedAt,
	}
}

// ListDetails godoc
// @Summary      List buyer details
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identity.UserDetail}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/details [get]
func (h *AccountHandler) ListDetails(c *gin.Context) {
	details, err := h.accountService.Details(c.Request.Context(), sessionUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if details == nil {
		details = []identity.UserDetail{}
	}
	h.Success(c, details)
}

// GetDetail godoc
// @Summary      Get buyer detail
// @Tags         account
// @Produce      json
// @Param        id path string true "User detail ID"
// @Success      200 {object} dto.Response{data=identity.UserDetail}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/details/{id} [get]
func (h *AccountHandler) GetDetail(c *gin.Context) {
	detail, err := h.accountService.Detail(c.Request.Context(), sessionUserID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// CreateDetail godoc
// @Summary      Add buyer detail
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identity.UserDetail true "Address"
// @Success      201 {object} dto.Response{data=identity.UserDetail}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/details [post]
func (h *AccountHandler) CreateDetail(c *gin.Context) {
	var req identity.UserDetail
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.UserID = sessionUserID(c)

	detail, err := h.accountService.CreateDetail(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, detail)
}

// UpdateDetail godoc
// @Summary      Update buyer detail
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        id path string true "User detail ID"
// @Param        request body identity.UserDetail true "Address"
// @Success      200 {object} dto.Response{data=identity.UserDetail}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/details/{id} [put]
func (h *AccountHandler) UpdateDetail(c *gin.Context) {
	var req identity.UserDetail
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.UserID = sessionUserID(c)

	detail, err := h.accountService.UpdateDetail(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// DeleteDetail godoc
// @Summary      Delete buyer detail
// @Tags         account
// @Param        id path string true "User detail ID"
// @Success      204
// @Router       /account/details/{id} [delete]
func (h *AccountHandler) DeleteDetail(c *gin.Context) {
	if err := h.accountService.DeleteDetail(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListOrders godoc
// @Summary      List my orders
// @Tags         account
// @Produce      json
// @Param        status query string false "Order status"
// @Param        paymentStatus query string false "Payment status"
// @Param        createdAt query string false "Creation date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]checkout.Order}
// @Router       /account/orders [get]
func (h *AccountHandler) ListOrders(c *gin.Context) {
	var req OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	orders, err := h.accountService.Orders(c.Request.Context(), sessionUserID(c), req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if orders == nil {
		orders = []checkout.Order{}
	}
	h.Success(c, orders)
}

// GetOrder godoc
// @Summary      Get one of my orders
// @Tags         account
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=checkout.Order}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/orders/{id} [get]
func (h *AccountHandler) GetOrder(c *gin.Context) {
	order, err := h.accountService.Order(c.Request.Context(), sessionUserID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
