// Package local is a self-contained identity provider for development and tests.
// It keeps users and refresh tokens in memory, hashes passwords with bcrypt and
// issues HS256 access tokens. It mirrors the observable behaviour of a hosted
// GoTrue instance closely enough for the gateway to be exercised end to end.
package local

import (
	"context"
	"crypto/rand"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/internal/errors"
)

const (
	DefaultIssuer         = "skillup-local"
	DefaultAccessTokenTTL = time.Hour
	minProviderPassword   = 6
	maxProviderPassword   = 72 // bcrypt input limit, in bytes
)

var _ idp.Provider = (*Provider)(nil)

// Provider is an in-memory idp.Provider.
type Provider struct {
	users     *userRepo
	refresh   *refreshManager
	tokens    *tokenIssuer
	revoked   *revokedTokens
	nowFunc   func() time.Time
	accessTTL time.Duration
}

type Option func(*Provider)

// WithSigningKey sets the HMAC key used for access tokens. A random key is generated otherwise.
func WithSigningKey(key []byte) Option {
	return func(p *Provider) {
		if len(key) > 0 {
			p.tokens.key = key
		}
	}
}

func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.accessTTL = ttl
		}
	}
}

func WithIssuer(issuer string) Option {
	return func(p *Provider) {
		p.tokens.issuer = issuer
	}
}

// WithNowFunc overrides the clock, used by tests to expire tokens.
func WithNowFunc(now func() time.Time) Option {
	return func(p *Provider) {
		p.nowFunc = now
	}
}

func New(opts ...Option) (*Provider, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Wrapf(err, "[local.New] generate signing key")
	}
	p := &Provider{
		users:     newUserRepo(),
		tokens:    &tokenIssuer{key: key, issuer: DefaultIssuer},
		revoked:   newRevokedTokens(),
		nowFunc:   time.Now,
		accessTTL: DefaultAccessTokenTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tokens.now = p.now
	p.refresh = newRefreshManager(p.now)
	return p, nil
}

func (p *Provider) now() time.Time {
	return p.nowFunc()
}

func (p *Provider) CreateUser(_ context.Context, params idp.CreateUserParams) (*idp.User, error) {
	email := normaliseEmail(params.Email)
	if email == "" {
		return nil, &idp.Error{Status: http.StatusBadRequest, Code: "validation_failed", Message: "Unable to validate email address: invalid format"}
	}
	if len(params.Password) < minProviderPassword {
		return nil, &idp.Error{Status: http.StatusUnprocessableEntity, Code: idp.CodeWeakPassword, Message: "Password should be at least 6 characters."}
	}
	if len(params.Password) > maxProviderPassword {
		return nil, &idp.Error{Status: http.StatusUnprocessableEntity, Code: idp.CodeWeakPassword, Message: "Password cannot be longer than 72 characters"}
	}

	hash, err := hashPassword(params.Password)
	if err != nil {
		return nil, errors.Wrapf(err, "[local.CreateUser] hash password")
	}
	u := &user{
		email:        email,
		passwordHash: hash,
		fullName:     params.FullName,
		createdAt:    p.now().UTC(),
	}
	if err := p.users.insert(u); err != nil {
		if errors.Is(err, errors.ErrUserAlreadyExists) {
			return nil, &idp.Error{
				Status:  http.StatusUnprocessableEntity,
				Code:    idp.CodeEmailExists,
				Message: "A user with this email address has already been registered",
			}
		}
		return nil, errors.Wrapf(err, "[local.CreateUser] store user")
	}
	return u.toIdentity(), nil
}

func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (*idp.User, *idp.Session, error) {
	u, err := p.users.getByEmail(normaliseEmail(email))
	if err != nil || !checkPasswordHash(password, u.passwordHash) {
		return nil, nil, invalidCredentials()
	}
	session, err := p.issueSession(u)
	if err != nil {
		return nil, nil, err
	}
	return u.toIdentity(), session, nil
}

// SignOut revokes the access token and the refresh token. Either may be empty,
// but at least one must be recognised.
func (p *Provider) SignOut(_ context.Context, accessToken, refreshToken string) error {
	recognised := false
	if accessToken != "" {
		if claims, err := p.tokens.parse(accessToken); err == nil {
			p.revoked.add(claims.ID, claims.ExpiresAt.Time)
			p.refresh.deleteForUser(claims.Subject)
			recognised = true
		}
	}
	if refreshToken != "" {
		if _, err := p.refresh.consume(refreshToken); err == nil {
			recognised = true
		}
	}
	if !recognised {
		return invalidToken("invalid JWT: unable to parse or verify signature")
	}
	p.revoked.cleanup(p.now())
	return nil
}

func (p *Provider) GetUser(_ context.Context, accessToken string) (*idp.User, error) {
	claims, err := p.tokens.parse(accessToken)
	if err != nil {
		return nil, invalidToken(err.Error())
	}
	if p.revoked.isRevoked(claims.ID) {
		return nil, invalidToken("invalid JWT: token has been revoked")
	}
	u, err := p.users.getByID(claims.Subject)
	if err != nil {
		return nil, &idp.Error{Status: http.StatusNotFound, Code: "user_not_found", Message: "User from sub claim in JWT does not exist"}
	}
	return u.toIdentity(), nil
}

// RefreshSession rotates the refresh token: the presented token is consumed and
// a fresh pair is issued.
func (p *Provider) RefreshSession(_ context.Context, refreshToken string) (*idp.Session, error) {
	userID, err := p.refresh.consume(refreshToken)
	if err != nil {
		return nil, &idp.Error{Status: http.StatusBadRequest, Code: idp.CodeRefreshNotFound, Message: "Invalid Refresh Token: Refresh Token Not Found"}
	}
	u, err := p.users.getByID(userID)
	if err != nil {
		return nil, &idp.Error{Status: http.StatusBadRequest, Code: idp.CodeRefreshNotFound, Message: "Invalid Refresh Token: User Not Found"}
	}
	return p.issueSession(u)
}

func (p *Provider) issueSession(u *user) (*idp.Session, error) {
	expiresAt := p.now().Add(p.accessTTL)
	access, err := p.tokens.create(u, expiresAt)
	if err != nil {
		return nil, errors.Wrapf(err, "[local.issueSession] sign access token")
	}
	refresh, err := p.refresh.create(u.id)
	if err != nil {
		return nil, errors.Wrapf(err, "[local.issueSession] create refresh token")
	}
	return &idp.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidCredentials() *idp.Error {
	return &idp.Error{Status: http.StatusBadRequest, Code: idp.CodeInvalidCredentials, Message: "Invalid login credentials"}
}

func invalidToken(msg string) *idp.Error {
	return &idp.Error{Status: http.StatusForbidden, Code: idp.CodeInvalidToken, Message: msg}
}
