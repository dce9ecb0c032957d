// Package identity models users, sessions and their lifecycle events.
package identity

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Roles known to the back-office
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleUser     = "user"
)

// BackOfficeRoles may use the admin screens
var BackOfficeRoles = []string{RoleAdmin, RoleEmployee}

// ErrInvalidSession is returned when a session cannot be built
var ErrInvalidSession = shared.NewDomainError("INVALID_SESSION", "Session is invalid")

var roleCaser = cases.Lower(language.Und)

// User is the signed-in account as held in the auth-storage document
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	UserName string   `json:"userName"`
	Roles    []string `json:"roles"`
}

// HasAnyRole reports whether the user holds at least one of roles
func (u User) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(u.Roles, roleCaser.String(r)) {
			return true
		}
	}
	return false
}

// IsBackOffice reports whether the user may access admin screens
func (u User) IsBackOffice() bool {
	return u.HasAnyRole(BackOfficeRoles...)
}

// NormalizeRoles lower-cases, trims and de-duplicates role names
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = roleCaser.String(strings.TrimSpace(r))
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Session is the persisted authentication state of one profile
type Session struct {
	Token           string     `json:"token"`
	User            *User      `json:"user"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

// NewSession builds an authenticated session. When the token is a JWT its
// exp claim becomes ExpiresAt; the signature is not checked here, the
// backend remains the verifier.
func NewSession(token string, user User) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidSession.WithMessage("Token is required")
	}
	user.Roles = NormalizeRoles(user.Roles)

	s := &Session{
		Token:           token,
		User:            &user,
		IsAuthenticated: true,
	}
	if exp, err := TokenExpiry(token); err == nil {
		s.ExpiresAt = exp
	}
	return s, nil
}

// Expired reports whether the token's exp has passed
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return !now.Before(*s.ExpiresAt)
}

// Active reports whether the session can authorize backend calls
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.IsAuthenticated && s.Token != "" && !s.Expired(now)
}

// TTL returns how long the session remains valid, or fallback when the
// token carries no expiry.
func (s *Session) TTL(now time.Time, fallback time.Duration) time.Duration {
	if s == nil || s.ExpiresAt == nil {
		return fallback
	}
	if ttl := s.ExpiresAt.Sub(now); ttl > 0 {
		return ttl
	}
	return 0
}

// errNoExpiry is returned by TokenExpiry when the token has no exp claim
var errNoExpiry = errors.New("token has no exp claim")

// TokenExpiry reads the exp claim of a JWT without verifying it
func TokenExpiry(token string) (*time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, errNoExpiry
	}
	t := exp.Time
	return &t, nil
}
