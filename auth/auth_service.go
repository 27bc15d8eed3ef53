// Package auth is the gateway between HTTP callers and the identity provider.
// It validates input, delegates every credential operation to an idp.Provider
// and normalises the provider's answers into a small set of domain errors.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/internal/errors"
	"github.com/jrsteele09/skillup-auth/validation"
	"github.com/rs/zerolog/log"
)

// Gateway is stateless; it is safe for concurrent use.
type Gateway struct {
	provider idp.Provider
}

// GatewayOption modifies a Gateway.
type GatewayOption func(*Gateway)

// WithProviderTimeout bounds every provider call. Zero leaves calls unbounded.
func WithProviderTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.provider = idp.WithTimeout(g.provider, d)
	}
}

func NewGateway(provider idp.Provider, options ...GatewayOption) (*Gateway, error) {
	if provider == nil {
		return nil, errors.New("[NewGateway] provider is required")
	}
	g := &Gateway{provider: provider}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Register creates a confirmed account. Fails with *validation.Error, ErrDuplicateUser,
// *ProviderError or an unexpected error.
func (g *Gateway) Register(ctx context.Context, c Credentials) (*idp.User, error) {
	if err := validation.Struct(c); err != nil {
		return nil, err
	}

	user, err := g.provider.CreateUser(ctx, idp.CreateUserParams{
		Email:    c.Email,
		Password: c.Password,
		FullName: strings.TrimSpace(c.FullName),
	})
	if err != nil {
		if idp.IsDuplicateUser(err) {
			return nil, ErrDuplicateUser
		}
		if perr := providerError("register", nil, err); perr != nil {
			return nil, perr
		}
		return nil, errors.Wrapf(err, "[Register] create user")
	}
	return user, nil
}

// Login signs in with email and password. Any provider rejection is ErrInvalidCredentials.
func (g *Gateway) Login(ctx context.Context, email, password string) (*idp.User, *idp.Session, error) {
	if err := validation.Email(email); err != nil {
		return nil, nil, err
	}

	user, session, err := g.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if perr := providerError("login", ErrInvalidCredentials, err); perr != nil {
			return nil, nil, perr
		}
		return nil, nil, errors.Wrapf(err, "[Login] sign in")
	}
	return user, session, nil
}

// Logout is best effort: the provider is only called when a refresh token is
// supplied, and its failures are logged rather than returned.
func (g *Gateway) Logout(ctx context.Context, accessToken, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := g.provider.SignOut(ctx, accessToken, refreshToken); err != nil {
		log.Warn().Err(err).Msg("[Logout] provider sign out failed")
	}
}

func (g *Gateway) RefreshSession(ctx context.Context, refreshToken string) (*idp.Session, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}
	session, err := g.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		if perr := providerError("refresh", ErrInvalidRefreshToken, err); perr != nil {
			return nil, perr
		}
		return nil, errors.Wrapf(err, "[RefreshSession] refresh")
	}
	return session, nil
}

func (g *Gateway) GetCurrentUser(ctx context.Context, accessToken string) (*idp.User, error) {
	if accessToken == "" {
		return nil, ErrTokenRequired
	}
	user, err := g.provider.GetUser(ctx, accessToken)
	if err != nil {
		if perr := providerError("get user", ErrInvalidToken, err); perr != nil {
			return nil, perr
		}
		return nil, errors.Wrapf(err, "[GetCurrentUser] get user")
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
