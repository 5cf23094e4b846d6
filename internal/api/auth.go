package api

import (
	"context"
	"net/http"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

// Login exchanges credentials for a token and the user's projection.
// Bad credentials fail with KindAuth and the server's message.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	body := domain.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", "/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a new account. Admins use it to create users of any role.
func (c *Client) Signup(ctx context.Context, in domain.UserInput) error {
	return c.do(ctx, http.MethodPost, "/signup", "/signup", in, nil)
}
