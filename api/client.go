package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zeropapel/zeropapel-go/internal/apperrors"
	"github.com/zeropapel/zeropapel-go/transport"
	"github.com/zeropapel/zeropapel-go/users"
)

// Client provides the typed /auth endpoints of the signing platform.
type Client struct {
	transport *transport.Client
}

// New creates a Client over the given transport.
func New(t *transport.Client) (*Client, error) {
	if t == nil {
		return nil, fmt.Errorf("[api.New] transport is required")
	}
	return &Client{transport: t}, nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleAuthRequest struct {
	Token string `json:"token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type profileResponse struct {
	User *users.User `json:"user"`
}

// Login exchanges an email and password for a credential pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.transport.Do(ctx, http.MethodPost, "/auth/login", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, credentialRejected(err)
	}
	return &resp, nil
}

// Register creates an account and returns its first credential pair.
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.transport.Do(ctx, http.MethodPost, "/auth/register", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, credentialRejected(err)
	}
	return &resp, nil
}

// GoogleAuth exchanges a verified Google identity token for a
// credential pair.
func (c *Client) GoogleAuth(ctx context.Context, idToken string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.transport.Do(ctx, http.MethodPost, "/auth/google-auth", googleAuthRequest{Token: idToken}, &resp)
	if err != nil {
		return nil, credentialRejected(err)
	}
	return &resp, nil
}

// Logout tells the server to end the session. Credential cleanup is the
// session manager's job, not this call's.
func (c *Client) Logout(ctx context.Context) error {
	return c.transport.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*users.User, error) {
	var resp profileResponse
	if err := c.transport.Do(ctx, http.MethodGet, "/auth/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateProfile updates profile fields and returns the fresh profile.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (*users.User, error) {
	var resp profileResponse
	if err := c.transport.Do(ctx, http.MethodPut, "/auth/profile", fields, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ForgotPassword requests a password-reset email. The server answers
// identically whether or not the address exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.transport.Do(ctx, http.MethodPost, "/auth/forgot-password", forgotPasswordRequest{Email: email}, nil)
}

// credentialRejected maps a server rejection on the credential
// endpoints to ErrInvalidCredentials, keeping the server message in the
// chain. Transport-level failures pass through untouched.
func credentialRejected(err error) error {
	if apperrors.Is(err, apperrors.ErrNetworkFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
}
