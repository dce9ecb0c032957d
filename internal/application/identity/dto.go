package identity

import (
	"time"

	"github.com/autoparts/storefront/internal/domain/identity"
)

// SignInInput contains the sign-in form
type SignInInput struct {
	Email    string
	Password string
}

// SignUpInput contains the registration form
type SignUpInput struct {
	Email    string
	Password string
	UserName string
}

// ChangePasswordInput contains the change-password form. An empty Email
// means the signed-in user's.
type ChangePasswordInput struct {
	Email       string
	Password    string
	NewPassword string
}

// SessionView is what clients see of the session; the token itself stays
// in the client store.
type SessionView struct {
	IsAuthenticated bool           `json:"isAuthenticated"`
	User            *identity.User `json:"user"`
	IsBackOffice    bool           `json:"isBackOffice"`
	ExpiresAt       *time.Time     `json:"expiresAt,omitempty"`
}

// NewSessionView converts a possibly nil session
func NewSessionView(s *identity.Session) SessionView {
	if s == nil || s.User == nil {
		return SessionView{}
	}
	return SessionView{
		IsAuthenticated: s.IsAuthenticated,
		User:            s.User,
		IsBackOffice:    s.User.IsBackOffice(),
		ExpiresAt:       s.ExpiresAt,
	}
}
