// Package gotrue talks to a Supabase/GoTrue compatible identity provider over its REST API.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/internal/errors"
	"github.com/jrsteele09/skillup-auth/internal/utils"
)

const (
	pathAdminUsers = "/auth/v1/admin/users"
	pathToken      = "/auth/v1/token"
	pathUser       = "/auth/v1/user"
	pathLogout     = "/auth/v1/logout"

	maxErrorBody = 64 << 10
)

var _ idp.Provider = (*Client)(nil)

// Client is an idp.Provider backed by GoTrue. The anon key authorises public
// endpoints; the service key is only sent for admin user creation.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func New(baseURL, anonKey, serviceKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type userResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u *userResponse) toIdentity() *idp.User {
	fullName, _ := u.UserMetadata["full_name"].(string)
	return &idp.User{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  utils.NonEmptyPtr(fullName),
		CreatedAt: u.CreatedAt,
	}
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	RefreshToken string        `json:"refresh_token"`
	User         *userResponse `json:"user"`
}

func (t *tokenResponse) toSession() *idp.Session {
	expiresAt := t.ExpiresAt
	if expiresAt == 0 && t.ExpiresIn > 0 {
		expiresAt = time.Now().Unix() + t.ExpiresIn
	}
	return &idp.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

func (c *Client) CreateUser(ctx context.Context, params idp.CreateUserParams) (*idp.User, error) {
	body := map[string]any{
		"email":         params.Email,
		"password":      params.Password,
		"email_confirm": true,
		"user_metadata": map[string]string{"full_name": params.FullName},
	}
	var resp userResponse
	if err := c.do(ctx, http.MethodPost, pathAdminUsers, nil, c.serviceKey, c.serviceKey, body, &resp); err != nil {
		return nil, err
	}
	return resp.toIdentity(), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*idp.User, *idp.Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, pathToken, query, c.anonKey, c.anonKey, body, &resp); err != nil {
		return nil, nil, err
	}
	if resp.User == nil {
		return nil, nil, fmt.Errorf("[gotrue.SignInWithPassword] token response has no user")
	}
	return resp.User.toIdentity(), resp.toSession(), nil
}

// SignOut ends every session of the user owning accessToken. GoTrue identifies
// the session by the access token, so refreshToken is not sent.
func (c *Client) SignOut(ctx context.Context, accessToken, _ string) error {
	query := url.Values{"scope": {"global"}}
	return c.do(ctx, http.MethodPost, pathLogout, query, c.anonKey, accessToken, nil, nil)
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*idp.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, pathUser, nil, c.anonKey, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toIdentity(), nil
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*idp.Session, error) {
	query := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, pathToken, query, c.anonKey, c.anonKey, body, &resp); err != nil {
		return nil, err
	}
	return resp.toSession(), nil
}

// do sends a JSON request. Non-2xx answers are returned as *idp.Error; everything
// else that goes wrong is an unexpected error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, apiKey, bearer string, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "[gotrue] encode %s request", path)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrapf(err, "[gotrue] build %s request", path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[gotrue] %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[gotrue] decode %s response", path)
	}
	return nil
}

// apiError covers the error shapes GoTrue has used across versions.
type apiError struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func decodeError(resp *http.Response) *idp.Error {
	perr := &idp.Error{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body apiError
	if err := json.Unmarshal(raw, &body); err != nil {
		perr.Code = idp.CodeUnexpectedResponse
		perr.Message = http.StatusText(resp.StatusCode)
		return perr
	}

	var code string
	_ = json.Unmarshal(body.Code, &code) // numeric codes are the HTTP status, ignore them
	perr.Code = firstNonEmpty(body.ErrorCode, code, body.Error)
	perr.Message = firstNonEmpty(body.Msg, body.Message, body.ErrorDescription, body.Error, http.StatusText(resp.StatusCode))
	return perr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
