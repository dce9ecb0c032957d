package backend

import (
	"context"
	"net/http"

	"github.com/autoparts/storefront/internal/domain/identity"
)

func (c *Client) SignIn(ctx context.Context, creds identity.Credentials) (identity.AuthResult, error) {
	var res identity.AuthResult
	err := c.send(ctx, http.MethodPost, "auth", "/auth/signin", creds, &res)
	return res, err
}

// SignUp registers an account. The backend answers with a message only;
// callers sign in afterwards.
func (c *Client) SignUp(ctx context.Context, reg identity.Registration) error {
	return c.send(ctx, http.MethodPost, "auth", "/auth/signup", reg, nil)
}

// Status returns the account behind the bearer token in ctx
func (c *Client) Status(ctx context.Context) (identity.AuthResult, error) {
	var res identity.AuthResult
	err := c.get(ctx, "auth", "/auth/status", nil, &res)
	return res, err
}

// GoogleAuthURL is where the browser starts the Google sign-in
func (c *Client) GoogleAuthURL() string {
	return c.baseURL + "/auth/google"
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.send(ctx, http.MethodPost, "auth", "/auth/reset-password", map[string]string{"email": email}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, change identity.PasswordChange) error {
	return c.send(ctx, http.MethodPost, "auth", "/auth/change-password", change, nil)
}

func (c *Client) ListUsers(ctx context.Context, filter identity.UserAccountFilter) ([]identity.UserAccount, error) {
	var users []identity.UserAccount
	err := c.get(ctx, "user", "/auth/users", filter.Values(), &users)
	return users, err
}

func (c *Client) GetUser(ctx context.Context, id string) (identity.UserAccount, error) {
	var u identity.UserAccount
	err := c.get(ctx, "user", pathID("/auth/user", id), nil, &u)
	return u, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, upd identity.AccountUpdate) (identity.UserAccount, error) {
	var u identity.UserAccount
	err := c.send(ctx, http.MethodPatch, "user", pathID("/auth/user", id), upd, &u)
	return u, err
}
