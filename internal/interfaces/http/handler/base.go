// Package handler provides the HTTP handlers of the storefront and back-office.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/backend"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/autoparts/storefront/internal/interfaces/http/dto"
	"github.com/autoparts/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// profileID returns the caller's profile, always set by the Profile middleware
func profileID(c *gin.Context) profile.ID {
	return middleware.GetProfileID(c)
}

// sessionUserID returns the signed-in user's id. Routes using it sit
// behind RequireSession.
func sessionUserID(c *gin.Context) string {
	if s := middleware.GetSession(c); s != nil && s.User != nil {
		return s.User.ID
	}
	return ""
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindError answers a failed ShouldBind* with field details when the
// validator produced them
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if middleware.BodyTooLarge(err) {
		middleware.AbortBodyTooLarge(c)
		return
	}
	if details := middleware.ValidationDetails(err); len(details) > 0 {
		h.ValidationError(c, details)
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Solicitud inválida")
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Revisa los datos enviados",
		getRequestID(c),
		details,
	))
}

// HandleError converts domain and backend errors to HTTP responses.
// Backend 4xx keep their status and message; 5xx and transport failures
// become 502 with the generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID)
		resp.Error.Details = middleware.ValidationDetails(err)
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	if be, ok := backend.AsError(err); ok {
		switch be.Kind {
		case backend.KindUnauthorized:
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, be.Message)
		case backend.KindValidation:
			h.Error(c, be.Status, codeForStatus(be.Status), be.Message)
		default:
			logger.L(c.Request.Context()).Error("Backend unavailable", zap.Error(err))
			h.Error(c, http.StatusBadGateway, dto.ErrCodeBackendUnavailable, backend.GenericMessage)
		}
		return
	}

	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, backend.GenericMessage)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return dto.ErrCodeNotFound
	case http.StatusForbidden:
		return dto.ErrCodeForbidden
	case http.StatusConflict:
		return dto.ErrCodeConflict
	case http.StatusTooManyRequests:
		return dto.ErrCodeRateLimited
	case http.StatusUnprocessableEntity:
		return dto.ErrCodeValidation
	default:
		return dto.ErrCodeBadRequest
	}
}

// confirmed reports whether a destructive request was explicitly confirmed
func confirmed(c *gin.Context) bool {
	return isTrue(c.Query("confirm")) || isTrue(c.GetHeader("X-Confirm"))
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// wantsRedirect reports whether the caller is a plain browser form post
// expecting a redirect rather than JSON
func wantsRedirect(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// wantsHTML reports a browser navigation
func wantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
