package auth

import (
	"context"
	"errors"
	"fmt"

	apiclient "hrmportal/internal/transport/http/client"
)

// Client talks to the /auth endpoints.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login never sends the current token. A 401 is reported as
// ErrInvalidCredentials so callers can tell a wrong password apart from a
// broken server.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.api.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &out, apiclient.Anonymous())
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return LoginResult{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, apiclient.Message(err))
		}
		return LoginResult{}, err
	}
	if out.Token == "" || out.User.ID == "" {
		return LoginResult{}, ErrMalformedLoginReply
	}
	role, err := ParseRole(string(out.User.Role))
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrMalformedLoginReply, err)
	}
	out.User.Role = role
	return out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.api.Post(ctx, "/auth/logout", nil, nil, apiclient.WithToken(token))
}

// Me returns the identity behind token. ErrTokenRejected means the server no
// longer accepts it.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var out User
	if err := c.api.Get(ctx, "/auth/me", &out, apiclient.WithToken(token)); err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return User{}, fmt.Errorf("%w: %s", ErrTokenRejected, apiclient.Message(err))
		}
		return User{}, err
	}
	return out, nil
}
