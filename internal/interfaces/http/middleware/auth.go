package middleware

import (
	"net/http"

	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/autoparts/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireSession rejects anonymous profiles with 401
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if session == nil || !session.IsAuthenticated || session.User == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized,
				"Debes iniciar sesión",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}

// RequireRoles lets through users holding any of roles. It must run after
// RequireSession.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if session == nil || session.User == nil || !session.User.HasAnyRole(roles...) {
			logger.L(c.Request.Context()).Warn("Role check failed",
				zap.Strings("required", roles),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"No tienes permiso para acceder a esta sección",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
