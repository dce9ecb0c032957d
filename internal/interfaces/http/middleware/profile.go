package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/infrastructure/backend"
	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gin context keys set by Profile
const (
	ProfileIDKey = "profile_id"
	SessionKey   = "session"
)

// SessionSource reads and refreshes a profile's persisted state
type SessionSource interface {
	Session(ctx context.Context, id profile.ID) (*identity.Session, error)
	Touch(ctx context.Context, id profile.ID) error
}

// Profile identifies the browser profile by its cookie, issuing a new one
// on first contact, and loads its session. The profile id, the profile's
// logger and the session token are put on the request context so backend
// calls authenticate as the signed-in user.
func Profile(cfg config.CookieConfig, sessions SessionSource) gin.HandlerFunc {
	sameSite := parseSameSite(cfg.SameSite)
	maxAge := int(cfg.MaxAge.Seconds())

	return func(c *gin.Context) {
		id, err := profile.ParseID(readCookie(c, cfg.Name))
		if err != nil {
			id = profile.NewID()
		}
		// refreshed on every visit so the cookie outlives the store TTL
		c.SetSameSite(sameSite)
		c.SetCookie(cfg.Name, id.String(), maxAge, cfg.Path, cfg.Domain, cfg.Secure, true)

		ctx := profile.WithID(c.Request.Context(), id)
		ctx = logger.WithProfileID(ctx, id.String())
		ctx = logger.WithContext(ctx, logger.L(ctx).With(zap.String("profile_id", id.String())))
		c.Set(ProfileIDKey, id)

		session, err := sessions.Session(ctx, id)
		if err != nil {
			logger.L(ctx).Warn("Failed to load session", zap.Error(err))
		}
		if session != nil {
			c.Set(SessionKey, session)
			ctx = backend.WithToken(ctx, session.Token)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if err := sessions.Touch(context.WithoutCancel(ctx), id); err != nil {
			logger.L(ctx).Debug("Failed to refresh profile expiry", zap.Error(err))
		}
	}
}

func readCookie(c *gin.Context, name string) string {
	v, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return v
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// GetProfileID returns the profile set by Profile
func GetProfileID(c *gin.Context) profile.ID {
	if v, ok := c.Get(ProfileIDKey); ok {
		if id, ok := v.(profile.ID); ok {
			return id
		}
	}
	return ""
}

// GetSession returns the session loaded by Profile, nil when anonymous
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*identity.Session); ok {
			return s
		}
	}
	return nil
}
