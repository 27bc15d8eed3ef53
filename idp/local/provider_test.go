package local_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/idp/local"
	"github.com/jrsteele09/skillup-auth/internal/utils"
	"github.com/stretchr/testify/require"
)

const testPassword = "Abcd123!"

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupProvider(t *testing.T) (*local.Provider, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	p, err := local.New(local.WithNowFunc(c.Now), local.WithAccessTokenTTL(time.Hour))
	require.NoError(t, err)
	return p, c
}

func createUser(t *testing.T, p *local.Provider, email string) *idp.User {
	t.Helper()
	u, err := p.CreateUser(context.Background(), idp.CreateUserParams{Email: email, Password: testPassword, FullName: "Jane Doe"})
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	p, c := setupProvider(t)
	ctx := context.Background()

	u := createUser(t, p, "New@X.com")
	require.NotEmpty(t, u.ID)
	require.Equal(t, "new@x.com", u.Email)
	require.Equal(t, "Jane Doe", utils.Value(u.FullName))
	require.Equal(t, c.Now(), u.CreatedAt)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := p.CreateUser(ctx, idp.CreateUserParams{Email: "new@x.com", Password: testPassword})
		require.True(t, idp.IsDuplicateUser(err))
		perr, ok := idp.AsError(err)
		require.True(t, ok)
		require.Equal(t, "A user with this email address has already been registered", perr.Message)
	})

	t.Run("empty full name is not stored", func(t *testing.T) {
		u, err := p.CreateUser(ctx, idp.CreateUserParams{Email: "anon@x.com", Password: testPassword})
		require.NoError(t, err)
		require.Nil(t, u.FullName)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := p.CreateUser(ctx, idp.CreateUserParams{Email: "short@x.com", Password: "abc"})
		perr, ok := idp.AsError(err)
		require.True(t, ok)
		require.Equal(t, idp.CodeWeakPassword, perr.Code)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		_, err := p.CreateUser(ctx, idp.CreateUserParams{Email: "long@x.com", Password: strings.Repeat("a", 73)})
		perr, ok := idp.AsError(err)
		require.True(t, ok)
		require.Equal(t, idp.CodeWeakPassword, perr.Code)
		require.Equal(t, "Password cannot be longer than 72 characters", perr.Message)

		_, err = p.CreateUser(ctx, idp.CreateUserParams{Email: "max@x.com", Password: strings.Repeat("a", 72)})
		require.NoError(t, err)
	})
}

func TestSignInAndGetUser(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()
	created := createUser(t, p, "jane@x.com")

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := p.SignInWithPassword(ctx, "jane@x.com", "Wrong123!")
		perr, ok := idp.AsError(err)
		require.True(t, ok)
		require.Equal(t, idp.CodeInvalidCredentials, perr.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := p.SignInWithPassword(ctx, "nobody@x.com", testPassword)
		_, ok := idp.AsError(err)
		require.True(t, ok)
	})

	t.Run("success", func(t *testing.T) {
		u, session, err := p.SignInWithPassword(ctx, " JANE@x.com", testPassword)
		require.NoError(t, err)
		require.Equal(t, created.ID, u.ID)
		require.NotEmpty(t, session.AccessToken)
		require.NotEmpty(t, session.RefreshToken)

		got, err := p.GetUser(ctx, session.AccessToken)
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
		require.Equal(t, "jane@x.com", got.Email)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := p.GetUser(ctx, "not-a-jwt")
		perr, ok := idp.AsError(err)
		require.True(t, ok)
		require.Equal(t, idp.CodeInvalidToken, perr.Code)
	})

	t.Run("token from another provider", func(t *testing.T) {
		other, _ := setupProvider(t)
		createUser(t, other, "jane@x.com")
		_, session, err := other.SignInWithPassword(ctx, "jane@x.com", testPassword)
		require.NoError(t, err)

		_, err = p.GetUser(ctx, session.AccessToken)
		_, ok := idp.AsError(err)
		require.True(t, ok)
	})
}

func TestAccessTokenExpiry(t *testing.T) {
	p, c := setupProvider(t)
	ctx := context.Background()
	createUser(t, p, "jane@x.com")

	_, session, err := p.SignInWithPassword(ctx, "jane@x.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, c.Now().Add(time.Hour).Unix(), session.ExpiresAt)

	c.Advance(time.Hour + time.Minute)
	_, err = p.GetUser(ctx, session.AccessToken)
	_, ok := idp.AsError(err)
	require.True(t, ok)
}

func TestRefreshSession(t *testing.T) {
	p, c := setupProvider(t)
	ctx := context.Background()
	createUser(t, p, "jane@x.com")

	_, session, err := p.SignInWithPassword(ctx, "jane@x.com", testPassword)
	require.NoError(t, err)

	c.Advance(30 * time.Minute)
	refreshed, err := p.RefreshSession(ctx, session.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, session.AccessToken, refreshed.AccessToken)
	require.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)
	require.Greater(t, refreshed.ExpiresAt, session.ExpiresAt)

	t.Run("refresh tokens are single use", func(t *testing.T) {
		_, err := p.RefreshSession(ctx, session.RefreshToken)
		perr, ok := idp.AsError(err)
		require.True(t, ok)
		require.Equal(t, idp.CodeRefreshNotFound, perr.Code)
	})

	t.Run("new access token works", func(t *testing.T) {
		_, err := p.GetUser(ctx, refreshed.AccessToken)
		require.NoError(t, err)
	})
}

func TestSignOut(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()
	createUser(t, p, "jane@x.com")

	_, session, err := p.SignInWithPassword(ctx, "jane@x.com", testPassword)
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, session.AccessToken, session.RefreshToken))

	_, err = p.GetUser(ctx, session.AccessToken)
	_, ok := idp.AsError(err)
	require.True(t, ok, "access token is revoked")

	_, err = p.RefreshSession(ctx, session.RefreshToken)
	_, ok = idp.AsError(err)
	require.True(t, ok, "refresh token is revoked")

	t.Run("nothing recognised", func(t *testing.T) {
		err := p.SignOut(ctx, "", "unknown")
		_, ok := idp.AsError(err)
		require.True(t, ok)
	})

	t.Run("access token only revokes every refresh token of the user", func(t *testing.T) {
		_, first, err := p.SignInWithPassword(ctx, "jane@x.com", testPassword)
		require.NoError(t, err)
		_, second, err := p.SignInWithPassword(ctx, "jane@x.com", testPassword)
		require.NoError(t, err)

		require.NoError(t, p.SignOut(ctx, second.AccessToken, ""))
		_, err = p.RefreshSession(ctx, first.RefreshToken)
		require.Error(t, err)
	})
}
