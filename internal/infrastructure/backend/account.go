package backend

import (
	"context"
	"net/http"

	"github.com/autoparts/storefront/internal/domain/identity"
)

// ListUserDetails returns the signed-in user's saved buyer details
func (c *Client) ListUserDetails(ctx context.Context) ([]identity.UserDetail, error) {
	var details []identity.UserDetail
	err := c.get(ctx, "user-detail", "/user-detail", nil, &details)
	return details, err
}

func (c *Client) GetUserDetail(ctx context.Context, id string) (identity.UserDetail, error) {
	var d identity.UserDetail
	err := c.get(ctx, "user-detail", pathID("/user-detail", id), nil, &d)
	return d, err
}

func (c *Client) CreateUserDetail(ctx context.Context, d identity.UserDetail) (identity.UserDetail, error) {
	var out identity.UserDetail
	err := c.send(ctx, http.MethodPost, "user-detail", "/user-detail", d, &out)
	return out, err
}

func (c *Client) UpdateUserDetail(ctx context.Context, id string, d identity.UserDetail) (identity.UserDetail, error) {
	var out identity.UserDetail
	err := c.send(ctx, http.MethodPatch, "user-detail", pathID("/user-detail", id), d, &out)
	return out, err
}

func (c *Client) DeleteUserDetail(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "user-detail", pathID("/user-detail", id), nil, nil)
}
