package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

// Dashboard fetches the admin summary statistics.
func (c *Client) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/admin/dashboard", "/admin/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers lists users, optionally filtered by role.
func (c *Client) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	path := "/admin/users"
	if filter.Role != "" {
		path += "?" + url.Values{"role": {filter.Role.String()}}.Encode()
	}

	users := []domain.User{}
	if err := c.do(ctx, http.MethodGet, "/admin/users", path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces a user's editable fields.
func (c *Client) UpdateUser(ctx context.Context, id domain.ID, in domain.UserInput) error {
	return c.do(ctx, http.MethodPut, "/admin/users/:id", "/admin/users/"+escapeID(id), in, nil)
}

// DeleteUser removes a user. The server refuses users that own stores or
// have submitted ratings.
func (c *Client) DeleteUser(ctx context.Context, id domain.ID) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/:id", "/admin/users/"+escapeID(id), nil, nil)
}

// ListAdminStores lists every store with owner and rating aggregates.
func (c *Client) ListAdminStores(ctx context.Context) ([]domain.Store, error) {
	stores := []domain.Store{}
	if err := c.do(ctx, http.MethodGet, "/admin/stores", "/admin/stores", nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// UpdateStore replaces a store's editable fields.
func (c *Client) UpdateStore(ctx context.Context, id domain.ID, in domain.StoreInput) error {
	return c.do(ctx, http.MethodPut, "/admin/stores/:id", "/admin/stores/"+escapeID(id), in, nil)
}

// DeleteStore removes a store together with all of its ratings.
func (c *Client) DeleteStore(ctx context.Context, id domain.ID) error {
	return c.do(ctx, http.MethodDelete, "/admin/stores/:id", "/admin/stores/"+escapeID(id), nil, nil)
}

func escapeID(id domain.ID) string {
	return url.PathEscape(id.String())
}
