// Package identity handles sign in, sign up and session refresh against the backend.
package identity

import (
	"context"
	"strings"

	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/backend"
	"go.uber.org/zap"
)

// Backend is the slice of the REST backend that authenticates
type Backend interface {
	SignIn(ctx context.Context, creds identity.Credentials) (identity.AuthResult, error)
	SignUp(ctx context.Context, reg identity.Registration) error
	Status(ctx context.Context) (identity.AuthResult, error)
	GoogleAuthURL() string
	ResetPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, change identity.PasswordChange) error
}

// SessionStore persists the profile's session
type SessionStore interface {
	Session(ctx context.Context, id profile.ID) (*identity.Session, error)
	SetAuth(ctx context.Context, id profile.ID, token string, user identity.User) (*identity.Session, error)
	Logout(ctx context.Context, id profile.ID, reason identity.EndReason) error
}

// AuthService signs profiles in and out against the backend
type AuthService struct {
	backend  Backend
	sessions SessionStore
	logger   *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(backend Backend, sessions SessionStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		backend:  backend,
		sessions: sessions,
		logger:   logger.Named("auth"),
	}
}

// SignIn authenticates and stores the session
func (s *AuthService) SignIn(ctx context.Context, id profile.ID, input SignInInput) (SessionView, error) {
	creds := identity.Credentials{
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
	}
	// sent anonymously so a wrong password never ends the current session
	res, err := s.backend.SignIn(backend.WithToken(ctx, ""), creds)
	if err != nil {
		s.logger.Info("Sign in rejected", zap.String("profile_id", id.String()), zap.Error(err))
		return SessionView{}, err
	}
	return s.store(ctx, id, res.Token, res)
}

// SignUp registers the account and then signs in with the same
// credentials, the backend's signup answer carries no token.
func (s *AuthService) SignUp(ctx context.Context, id profile.ID, input SignUpInput) (SessionView, error) {
	reg := identity.Registration{
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
		UserName: strings.TrimSpace(input.UserName),
	}
	if err := s.backend.SignUp(backend.WithToken(ctx, ""), reg); err != nil {
		return SessionView{}, err
	}
	s.logger.Info("Account registered", zap.String("profile_id", id.String()))
	return s.SignIn(ctx, id, SignInInput{Email: reg.Email, Password: reg.Password})
}

// Current returns the session view of the profile
func (s *AuthService) Current(ctx context.Context, id profile.ID) (SessionView, error) {
	session, err := s.sessions.Session(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return NewSessionView(session), nil
}

// Refresh reloads the signed-in user from /auth/status, keeping the token
// unless the backend issued a new one
func (s *AuthService) Refresh(ctx context.Context, id profile.ID) (SessionView, error) {
	session, err := s.sessions.Session(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	if session == nil {
		return SessionView{}, shared.ErrUnauthorized
	}
	return s.statusWithToken(ctx, id, session.Token)
}

// GoogleURL is where the browser starts Google sign-in
func (s *AuthService) GoogleURL() string {
	return s.backend.GoogleAuthURL()
}

// GoogleCallback stores the token handed back by the OAuth redirect and
// populates the user from /auth/status
func (s *AuthService) GoogleCallback(ctx context.Context, id profile.ID, token string) (SessionView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SessionView{}, shared.ErrInvalidInput.WithMessage("Falta el token de autenticación")
	}
	return s.statusWithToken(ctx, id, token)
}

func (s *AuthService) statusWithToken(ctx context.Context, id profile.ID, token string) (SessionView, error) {
	res, err := s.backend.Status(backend.WithToken(ctx, token))
	if err != nil {
		return SessionView{}, err
	}
	if res.Token != "" {
		token = res.Token
	}
	return s.store(ctx, id, token, res)
}

// Logout ends the session; the cart goes with it
func (s *AuthService) Logout(ctx context.Context, id profile.ID) error {
	return s.sessions.Logout(ctx, id, identity.EndReasonLogout)
}

// ResetPassword asks the backend to mail a reset link
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.ErrInvalidInput.WithMessage("El correo es obligatorio")
	}
	return s.backend.ResetPassword(backend.WithToken(ctx, ""), email)
}

// ChangePassword changes the password of the signed-in user
func (s *AuthService) ChangePassword(ctx context.Context, id profile.ID, input ChangePasswordInput) error {
	session, err := s.sessions.Session(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return shared.ErrUnauthorized
	}
	email := strings.TrimSpace(input.Email)
	if email == "" && session.User != nil {
		email = session.User.Email
	}
	if input.Password == input.NewPassword {
		return shared.ErrInvalidInput.WithMessage("La nueva contraseña debe ser distinta de la actual")
	}
	return s.backend.ChangePassword(backend.WithToken(ctx, session.Token), identity.PasswordChange{
		Email:       email,
		Password:    input.Password,
		NewPassword: input.NewPassword,
	})
}

func (s *AuthService) store(ctx context.Context, id profile.ID, token string, res identity.AuthResult) (SessionView, error) {
	session, err := s.sessions.SetAuth(ctx, id, token, res.User())
	if err != nil {
		return SessionView{}, err
	}
	s.logger.Info("Signed in",
		zap.String("profile_id", id.String()),
		zap.String("user_id", res.ID))
	return NewSessionView(session), nil
}
