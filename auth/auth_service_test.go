package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/skillup-auth/auth"
	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/idp/local"
	"github.com/jrsteele09/skillup-auth/validation"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "new@x.com"
	testPassword = "Abcd123!"
	testFullName = "Jane Doe"
)

// stubProvider answers every call with the configured values and counts calls.
type stubProvider struct {
	user    *idp.User
	session *idp.Session
	err     error
	calls   map[string]int
}

func newStub(err error) *stubProvider {
	return &stubProvider{
		user:    &idp.User{ID: "u-1", Email: testEmail},
		session: &idp.Session{AccessToken: "at", RefreshToken: "rt"},
		err:     err,
		calls:   map[string]int{},
	}
}

func (s *stubProvider) CreateUser(context.Context, idp.CreateUserParams) (*idp.User, error) {
	s.calls["create"]++
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubProvider) SignInWithPassword(context.Context, string, string) (*idp.User, *idp.Session, error) {
	s.calls["signin"]++
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.user, s.session, nil
}

func (s *stubProvider) SignOut(context.Context, string, string) error {
	s.calls["signout"]++
	return s.err
}

func (s *stubProvider) GetUser(context.Context, string) (*idp.User, error) {
	s.calls["getuser"]++
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubProvider) RefreshSession(context.Context, string) (*idp.Session, error) {
	s.calls["refresh"]++
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type testFixture struct {
	provider *local.Provider
	gateway  *auth.Gateway
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	p, err := local.New()
	require.NoError(t, err)
	g, err := auth.NewGateway(p)
	require.NoError(t, err)
	return &testFixture{provider: p, gateway: g}
}

func (f *testFixture) register(t *testing.T) *idp.User {
	t.Helper()
	u, err := f.gateway.Register(context.Background(), auth.Credentials{Email: testEmail, Password: testPassword, FullName: testFullName})
	require.NoError(t, err)
	return u
}

func (f *testFixture) login(t *testing.T) *idp.Session {
	t.Helper()
	_, session, err := f.gateway.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	return session
}

func stubGateway(t *testing.T, err error) (*auth.Gateway, *stubProvider) {
	t.Helper()
	stub := newStub(err)
	g, gerr := auth.NewGateway(stub)
	require.NoError(t, gerr)
	return g, stub
}

func TestNewGateway_RequiresProvider(t *testing.T) {
	_, err := auth.NewGateway(nil)
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	u := f.register(t)
	require.Equal(t, testEmail, u.Email)
	require.Equal(t, testFullName, *u.FullName)

	t.Run("duplicate", func(t *testing.T) {
		_, err := f.gateway.Register(ctx, auth.Credentials{Email: testEmail, Password: testPassword, FullName: testFullName})
		require.ErrorIs(t, err, auth.ErrDuplicateUser)
	})

	t.Run("invalid input never reaches the provider", func(t *testing.T) {
		g, stub := stubGateway(t, nil)
		_, err := g.Register(ctx, auth.Credentials{Email: testEmail, Password: "abc", FullName: testFullName})
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "Password must be at least 8 characters long", verr.Reason)
		require.Zero(t, stub.calls["create"])
	})

	t.Run("other provider rejection", func(t *testing.T) {
		g, _ := stubGateway(t, &idp.Error{Status: 422, Code: idp.CodeWeakPassword, Message: "Password is known to be weak"})
		_, err := g.Register(ctx, auth.Credentials{Email: testEmail, Password: testPassword, FullName: testFullName})
		var perr *auth.ProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "Password is known to be weak", perr.Message())
		require.NotErrorIs(t, err, auth.ErrDuplicateUser)
	})

	t.Run("unexpected failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		g, _ := stubGateway(t, boom)
		_, err := g.Register(ctx, auth.Credentials{Email: testEmail, Password: testPassword, FullName: testFullName})
		require.ErrorIs(t, err, boom)
		var perr *auth.ProviderError
		require.False(t, errors.As(err, &perr))
	})
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	created := f.register(t)

	u, session, err := f.gateway.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)
	require.NotEmpty(t, session.AccessToken)

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.gateway.Login(ctx, testEmail, "Wrong123!")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, _, err := f.gateway.Login(ctx, "not-an-email", testPassword)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		require.Equal(t, validation.FieldEmail, verr.Field)
	})

	t.Run("weak password is the provider's call", func(t *testing.T) {
		_, _, err := f.gateway.Login(ctx, testEmail, "abc")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("no refresh token skips the provider", func(t *testing.T) {
		g, stub := stubGateway(t, nil)
		g.Logout(ctx, "at", "")
		require.Zero(t, stub.calls["signout"])
	})

	t.Run("provider failures are swallowed", func(t *testing.T) {
		g, stub := stubGateway(t, errors.New("boom"))
		g.Logout(ctx, "at", "rt")
		require.Equal(t, 1, stub.calls["signout"])
	})

	t.Run("tokens are revoked", func(t *testing.T) {
		f := setupTestFixture(t)
		f.register(t)
		session := f.login(t)

		f.gateway.Logout(ctx, session.AccessToken, session.RefreshToken)
		_, err := f.gateway.RefreshSession(ctx, session.RefreshToken)
		require.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})
}

func TestRefreshSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.register(t)
	session := f.login(t)

	refreshed, err := f.gateway.RefreshSession(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)

	t.Run("required", func(t *testing.T) {
		_, err := f.gateway.RefreshSession(ctx, "")
		require.ErrorIs(t, err, auth.ErrRefreshTokenRequired)
	})

	t.Run("reused token", func(t *testing.T) {
		_, err := f.gateway.RefreshSession(ctx, session.RefreshToken)
		require.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})
}

func TestGetCurrentUser(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	created := f.register(t)
	session := f.login(t)

	u, err := f.gateway.GetCurrentUser(ctx, session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)
	require.Equal(t, created.CreatedAt, u.CreatedAt)

	t.Run("invalid token", func(t *testing.T) {
		_, err := f.gateway.GetCurrentUser(ctx, "garbage")
		require.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := f.gateway.GetCurrentUser(ctx, "")
		require.ErrorIs(t, err, auth.ErrTokenRequired)
	})
}
