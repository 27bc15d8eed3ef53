package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/skillup-auth/auth"
	"github.com/jrsteele09/skillup-auth/client"
	"github.com/jrsteele09/skillup-auth/idp/local"
	"github.com/jrsteele09/skillup-auth/internal/config"
	"github.com/jrsteele09/skillup-auth/server"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "new@x.com"
	testPassword = "Abcd123!"
)

type testConfig struct {
	config.EnvVars
	config.Cors
	config.Session
}

func (testConfig) GetProvider() config.Provider {
	return config.Provider{Kind: config.ProviderLocal}
}

// setupClient runs a gateway backed by the local provider and returns a client for it.
func setupClient(t *testing.T) *client.Client {
	t.Helper()
	t.Setenv("ENV", "TEST")
	p, err := local.New()
	require.NoError(t, err)
	g, err := auth.NewGateway(p)
	require.NoError(t, err)
	s, err := server.New(testConfig{}, g)
	require.NoError(t, err)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/", client.WithHTTPClient(srv.Client()))
}

func TestClientFlow(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	u, err := c.Register(ctx, client.RegisterRequest{Email: testEmail, Password: testPassword, FullName: "Jane Doe"})
	require.NoError(t, err)
	require.Equal(t, testEmail, u.Email)
	require.Equal(t, "Jane Doe", u.DisplayName())

	_, err = c.Register(ctx, client.RegisterRequest{Email: testEmail, Password: testPassword, FullName: "Jane Doe"})
	require.EqualError(t, err, "User already exists with this email address (status 400)")
	require.Equal(t, http.StatusBadRequest, client.StatusOf(err))

	res, err := c.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, "Login successful", res.Message)
	require.NotEmpty(t, res.Session.AccessToken)

	me, err := c.Me(ctx, res.Session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, me.ID)
	require.NotEmpty(t, me.CreatedAt)

	status, err := c.Session(ctx, res.Session.AccessToken)
	require.NoError(t, err)
	require.True(t, status.Authenticated)

	refreshed, err := c.Refresh(ctx, res.Session.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.Session.RefreshToken, refreshed.RefreshToken)

	require.NoError(t, c.Logout(ctx, refreshed.AccessToken, refreshed.RefreshToken))

	_, err = c.Refresh(ctx, refreshed.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, client.StatusOf(err))
}

func TestClientErrors(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	_, err := c.Login(ctx, testEmail, "Wrong123!")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, &client.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}, apiErr)

	_, err = c.Me(ctx, "")
	require.Equal(t, http.StatusUnauthorized, client.StatusOf(err))

	status, err := c.Session(ctx, "garbage")
	require.NoError(t, err)
	require.False(t, status.Authenticated)

	cfg, err := c.PublicConfig(ctx)
	require.NoError(t, err)
	require.Empty(t, cfg.ProviderURL)
}

func TestFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL).Register(context.Background(), client.RegisterRequest{})
	require.Equal(t, &client.APIError{Status: http.StatusBadGateway, Message: "Registration failed"}, err)
}

func TestTransportErrorIsNotAnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := client.New(srv.URL).Login(context.Background(), testEmail, testPassword)
	require.Error(t, err)
	require.Zero(t, client.StatusOf(err))
}
