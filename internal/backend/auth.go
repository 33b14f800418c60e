package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoToken is returned when a login reply carries no token.
var ErrNoToken = errors.New("login response did not include a token")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	in := loginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		return "", fmt.Errorf("logging in %s: %w", in.Email, err)
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

// Register creates a traveler account.
func (c *Client) Register(ctx context.Context, r Registration) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", r, nil); err != nil {
		return fmt.Errorf("registering %s: %w", r.Email, err)
	}
	return nil
}
