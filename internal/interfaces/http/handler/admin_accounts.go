package handler

import (
	"github.com/autoparts/storefront/internal/application/admin"
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// UserListRequest represents the user listing query string
type UserListRequest struct {
	Email    string `form:"email"`
	Rol      string `form:"rol"`
	IsActive *bool  `form:"isActive"`
}

// UpdateUserRequest represents the role and activation change body
type UpdateUserRequest struct {
	Roles    []string `json:"roles" binding:"omitempty,dive,oneof=admin employee user"`
	IsActive *bool    `json:"isActive"`
}

// UploadResponse carries the public url of a stored file
type UploadResponse struct {
	URL string `json:"url"`
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        email query string false "Email"
// @Param        rol query string false "Role"
// @Param        isActive query bool false "Active flag"
// @Success      200 {object} dto.Response{data=[]identity.UserAccount}
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	users, err := h.adminService.ListUsers(c.Request.Context(), identity.UserAccountFilter{
		Email:    req.Email,
		Rol:      req.Rol,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if users == nil {
		users = []identity.UserAccount{}
	}
	h.Success(c, users)
}

// GetUser godoc
// @Summary      Get user
// @Tags         admin
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identity.UserAccount}
// @Router       /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateUser godoc
// @Summary      Change a user's roles or activation
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body UpdateUserRequest true "Changes"
// @Success      200 {object} dto.Response{data=identity.UserAccount}
// @Router       /admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.adminService.UpdateUser(c.Request.Context(), c.Param("id"), identity.AccountUpdate{
		Roles:    req.Roles,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ListOrders godoc
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Param        userId query string false "User ID"
// @Param        status query string false "Order status"
// @Param        paymentStatus query string false "Payment status"
// @Param        createdAt query string false "Creation date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]checkout.Order}
// @Router       /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var req OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	filter := req.Filter()
	filter.UserID = c.Query("userId")

	orders, err := h.adminService.ListOrders(c.Request.Context(), filter)
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
// @Summary      Get order
// @Tags         admin
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=checkout.Order}
// @Router       /admin/orders/{id} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	order, err := h.adminService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UploadImage godoc
// @Summary      Upload a catalog image
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Image"
// @Success      201 {object} dto.Response{data=UploadResponse}
// @Router       /admin/uploads [post]
func (h *AdminHandler) UploadImage(c *gin.Context) {
	h.upload(c, admin.UploadCatalogImage)
}

// UploadFile godoc
// @Summary      Upload an image through the files endpoint
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Image"
// @Success      201 {object} dto.Response{data=UploadResponse}
// @Router       /admin/files/image [post]
func (h *AdminHandler) UploadFile(c *gin.Context) {
	h.upload(c, admin.UploadFileImage)
}

func (h *AdminHandler) upload(c *gin.Context, target admin.UploadTarget) {
	header, err := c.FormFile("file")
	if err != nil {
		if middleware.BodyTooLarge(err) {
			middleware.AbortBodyTooLarge(c)
			return
		}
		h.BadRequest(c, "Se requiere un archivo")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	location, err := h.adminService.Upload(c.Request.Context(), target, header.Filename, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, UploadResponse{URL: location})
}
