// Package client is a typed HTTP client for the auth gateway's /api endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/skillup-auth/internal/errors"
)

const (
	pathRegister     = "/api/auth/register"
	pathLogin        = "/api/auth/login"
	pathLogout       = "/api/auth/logout"
	pathMe           = "/api/auth/me"
	pathRefresh      = "/api/auth/refresh"
	pathSession      = "/api/auth/session"
	pathPublicConfig = "/api/config/public"
)

// User is the profile returned by the gateway.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DisplayName is the full name, or the email when no name was given.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type LoginResult struct {
	Message string  `json:"message"`
	User    User    `json:"user"`
	Session Session `json:"session"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type SessionStatus struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

type PublicConfig struct {
	ProviderURL     string `json:"providerUrl"`
	ProviderAnonKey string `json:"providerAnonKey"`
}

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// StatusOf returns the HTTP status of an *APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// New creates a client for the gateway at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, pathRegister, "", req, &resp, "Registration failed"); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	req := map[string]string{"email": email, "password": password}
	var resp LoginResult
	if err := c.do(ctx, http.MethodPost, pathLogin, "", req, &resp, "Login failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	req := map[string]string{"refresh_token": refreshToken}
	return c.do(ctx, http.MethodPost, pathLogout, accessToken, req, nil, "Logout failed")
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	req := map[string]string{"refresh_token": refreshToken}
	var resp struct {
		Session Session `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, pathRefresh, "", req, &resp, "Token refresh failed"); err != nil {
		return nil, err
	}
	return &resp.Session, nil
}

func (c *Client) Me(ctx context.Context, accessToken string) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, pathMe, accessToken, nil, &resp, "Failed to get user"); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Session reports whether accessToken is currently valid. It never fails on a bad token.
func (c *Client) Session(ctx context.Context, accessToken string) (*SessionStatus, error) {
	var resp SessionStatus
	if err := c.do(ctx, http.MethodGet, pathSession, accessToken, nil, &resp, "Failed to get session"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PublicConfig(ctx context.Context) (*PublicConfig, error) {
	var resp PublicConfig
	if err := c.do(ctx, http.MethodGet, pathPublicConfig, "", nil, &resp, "Failed to get configuration"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends a JSON request; fallback is the message used when an error body has none.
func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "[client] encode %s", path)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "[client] build %s", path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[client] %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&errBody)
		message := errBody.Error
		if message == "" {
			message = fallback
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[client] decode %s", path)
	}
	return nil
}
