package identity

import (
	"net/url"
	"strconv"
	"strings"
)

// Credentials are the sign-in form fields
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserName string `json:"userName"`
}

// AuthResult is the backend's answer to sign-in and status calls
type AuthResult struct {
	ID       string   `json:"_id"`
	Email    string   `json:"email"`
	UserName string   `json:"userName,omitempty"`
	Roles    []string `json:"roles"`
	Token    string   `json:"token"`
}

// User converts the result into the session's user
func (r AuthResult) User() User {
	name := r.UserName
	if name == "" {
		name, _, _ = strings.Cut(r.Email, "@")
	}
	return User{
		ID:       r.ID,
		Email:    r.Email,
		UserName: name,
		Roles:    NormalizeRoles(r.Roles),
	}
}

// PasswordChange is the change-password form
type PasswordChange struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// UserAccount is an account as listed in the users admin screen
type UserAccount struct {
	ID       string   `json:"_id"`
	Email    string   `json:"email"`
	UserName string   `json:"userName"`
	Roles    []string `json:"roles"`
	IsActive bool     `json:"isActive"`
}

// UserAccountFilter narrows the admin user listing
type UserAccountFilter struct {
	Email    string
	Rol      string
	IsActive *bool
}

// Values serializes the non-empty filter fields
func (f UserAccountFilter) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(f.Email); s != "" {
		v.Set("email", s)
	}
	if s := strings.TrimSpace(f.Rol); s != "" {
		v.Set("rol", roleCaser.String(s))
	}
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	return v
}

// AccountUpdate changes the roles and activation of an account
type AccountUpdate struct {
	Roles    []string `json:"roles,omitempty"`
	IsActive *bool    `json:"isActive,omitempty"`
}
