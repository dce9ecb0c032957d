package handler

import (
	"net/http"

	appidentity "github.com/autoparts/storefront/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles sign-in, sign-up and the session lifecycle
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *appidentity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignInRequest represents the sign-in request body
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignUpRequest represents the registration request body
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	UserName string `json:"userName" binding:"required,max=100"`
}

// ResetPasswordRequest represents the password reset request body
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ChangePasswordRequest represents the change-password request body
type ChangePasswordRequest struct {
	Email       string `json:"email" binding:"omitempty,email"`
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// Session godoc
// @Summary      Current session
// @Description  Returns the auth state of the calling profile
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=appidentity.SessionView}
// @Router       /session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	view, err := h.authService.Current(c.Request.Context(), profileID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Refresh godoc
// @Summary      Refresh session
// @Description  Re-reads the signed-in user from the backend
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=appidentity.SessionView}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /session/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	view, err := h.authService.Refresh(c.Request.Context(), profileID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// SignIn godoc
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Credentials"
// @Success      200 {object} dto.Response{data=appidentity.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.authService.SignIn(c.Request.Context(), profileID(c), appidentity.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// SignUp godoc
// @Summary      Register
// @Description  Creates the account and signs it in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignUpRequest true "Registration"
// @Success      201 {object} dto.Response{data=appidentity.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.authService.SignUp(c.Request.Context(), profileID(c), appidentity.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		UserName: req.UserName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Logout godoc
// @Summary      Sign out
// @Description  Ends the session and clears the cart and checkout flow
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), profileID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Google godoc
// @Summary      Google sign-in
// @Description  Redirects to the backend's Google OAuth entry point
// @Tags         auth
// @Success      302
// @Router       /auth/google [get]
func (h *AuthHandler) Google(c *gin.Context) {
	c.Redirect(http.StatusFound, h.authService.GoogleURL())
}

// GoogleCallback godoc
// @Summary      Google sign-in callback
// @Description  Stores the token handed back by the OAuth round trip
// @Tags         auth
// @Produce      json
// @Param        token query string true "Session token"
// @Success      200 {object} dto.Response{data=appidentity.SessionView}
// @Success      302
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	view, err := h.authService.GoogleCallback(c.Request.Context(), profileID(c), c.Query("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.Success(c, view)
}

// ResetPassword godoc
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Param        request body ResetPasswordRequest true "Email"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangePassword godoc
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Param        request body ChangePasswordRequest true "Passwords"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	err := h.authService.ChangePassword(c.Request.Context(), profileID(c), appidentity.ChangePasswordInput{
		Email:       req.Email,
		Password:    req.Password,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
