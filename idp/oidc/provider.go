// Package oidc adapts a standard OAuth2/OpenID Connect server to idp.Provider.
//
// Sign-in uses the resource owner password grant and refresh uses the refresh
// token grant. Access tokens are verified by calling the UserInfo endpoint, so
// opaque tokens work as well as JWTs. Sign-out revokes tokens per RFC 7009 and
// user creation posts to an admin registration endpoint authorised with the
// client credentials grant.
package oidc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/internal/errors"
	"github.com/jrsteele09/skillup-auth/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var _ idp.Provider = (*Provider)(nil)

var DefaultScopes = []string{gooidc.ScopeOpenID, "profile", "email", gooidc.ScopeOfflineAccess}

type Config struct {
	Issuer          string
	ClientID        string
	ClientSecret    string
	RegistrationURL string // admin endpoint creating confirmed users, optional
	RevocationURL   string // overrides the discovered revocation_endpoint
	Scopes          []string
	HTTPClient      *http.Client
}

type Provider struct {
	provider        *gooidc.Provider
	oauth           *oauth2.Config
	admin           *clientcredentials.Config
	registrationURL string
	revocationURL   string
	httpClient      *http.Client
}

// New runs OIDC discovery against cfg.Issuer.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	p := &Provider{
		registrationURL: cfg.RegistrationURL,
		revocationURL:   cfg.RevocationURL,
		httpClient:      cfg.HTTPClient,
	}

	provider, err := gooidc.NewProvider(p.clientContext(ctx), cfg.Issuer)
	if err != nil {
		return nil, errors.Wrapf(err, "[oidc.New] discovery for %s", cfg.Issuer)
	}
	p.provider = provider

	if p.revocationURL == "" {
		var discovered struct {
			RevocationEndpoint string `json:"revocation_endpoint"`
		}
		if err := provider.Claims(&discovered); err != nil {
			return nil, errors.Wrapf(err, "[oidc.New] read discovery document")
		}
		p.revocationURL = discovered.RevocationEndpoint
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	p.oauth = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}
	p.admin = &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     p.oauth.Endpoint.TokenURL,
		AuthStyle:    p.oauth.Endpoint.AuthStyle,
	}
	return p, nil
}

// clientContext carries the configured HTTP client to go-oidc and x/oauth2.
func (p *Provider) clientContext(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return gooidc.ClientContext(ctx, p.httpClient)
}

type registrationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type registrationResponse struct {
	ID        string    `json:"id"`
	Sub       string    `json:"sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Provider) CreateUser(ctx context.Context, params idp.CreateUserParams) (*idp.User, error) {
	if p.registrationURL == "" {
		return nil, &idp.Error{Status: http.StatusForbidden, Code: idp.CodeSignupDisabled, Message: "Signups not allowed for this instance"}
	}
	ctx = p.clientContext(ctx)

	buf, err := json.Marshal(registrationRequest{Email: params.Email, Password: params.Password, Name: params.FullName})
	if err != nil {
		return nil, errors.Wrapf(err, "[oidc.CreateUser] encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.registrationURL, bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrapf(err, "[oidc.CreateUser] build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.admin.Client(ctx).Do(req)
	if err != nil {
		if perr := retrieveError(err); perr != nil {
			return nil, perr
		}
		return nil, errors.Wrapf(err, "[oidc.CreateUser] post registration")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}
	var out registrationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "[oidc.CreateUser] decode response")
	}
	return &idp.User{
		ID:        firstNonEmpty(out.ID, out.Sub),
		Email:     firstNonEmpty(out.Email, params.Email),
		FullName:  utils.NonEmptyPtr(firstNonEmpty(out.Name, params.FullName)),
		CreatedAt: out.CreatedAt,
	}, nil
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*idp.User, *idp.Session, error) {
	ctx = p.clientContext(ctx)
	tok, err := p.oauth.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		if perr := retrieveError(err); perr != nil {
			return nil, nil, perr
		}
		return nil, nil, errors.Wrapf(err, "[oidc.SignInWithPassword] password grant")
	}
	user, err := p.userInfo(ctx, tok)
	if err != nil {
		return nil, nil, err
	}
	return user, toSession(tok), nil
}

// SignOut revokes the refresh token, then the access token. Servers without a
// revocation endpoint have nothing to revoke.
func (p *Provider) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	if p.revocationURL == "" {
		return nil
	}
	ctx = p.clientContext(ctx)
	if refreshToken != "" {
		if err := p.revoke(ctx, refreshToken, "refresh_token"); err != nil {
			return err
		}
	}
	if accessToken != "" {
		return p.revoke(ctx, accessToken, "access_token")
	}
	return nil
}

func (p *Provider) GetUser(ctx context.Context, accessToken string) (*idp.User, error) {
	return p.userInfo(p.clientContext(ctx), &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

func (p *Provider) RefreshSession(ctx context.Context, refreshToken string) (*idp.Session, error) {
	ctx = p.clientContext(ctx)
	tok, err := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		if perr := retrieveError(err); perr != nil {
			return nil, perr
		}
		return nil, errors.Wrapf(err, "[oidc.RefreshSession] refresh grant")
	}
	return toSession(tok), nil
}

type userInfoClaims struct {
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// userInfo verifies tok by asking the provider who it belongs to. go-oidc reports
// non-200 answers as plain errors; only transport failures are treated as unexpected.
func (p *Provider) userInfo(ctx context.Context, tok *oauth2.Token) (*idp.User, error) {
	info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) || ctx.Err() != nil {
			return nil, errors.Wrapf(err, "[oidc.userInfo] request")
		}
		return nil, &idp.Error{Status: http.StatusUnauthorized, Code: idp.CodeInvalidToken, Message: err.Error()}
	}

	var claims userInfoClaims
	if err := info.Claims(&claims); err != nil {
		return nil, errors.Wrapf(err, "[oidc.userInfo] decode claims")
	}
	user := &idp.User{
		ID:       info.Subject,
		Email:    info.Email,
		FullName: utils.NonEmptyPtr(claims.Name),
	}
	if claims.CreatedAt > 0 {
		user.CreatedAt = time.Unix(claims.CreatedAt, 0).UTC()
	}
	return user, nil
}

func (p *Provider) revoke(ctx context.Context, token, hint string) error {
	form := url.Values{"token": {token}, "token_type_hint": {hint}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrapf(err, "[oidc.revoke] build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(url.QueryEscape(p.oauth.ClientID), url.QueryEscape(p.oauth.ClientSecret))

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[oidc.revoke] post revocation")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func toSession(tok *oauth2.Token) *idp.Session {
	s := &idp.Session{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}
	if !tok.Expiry.IsZero() {
		s.ExpiresAt = tok.Expiry.Unix()
	}
	return s
}

// retrieveError converts an OAuth2 token endpoint rejection.
func retrieveError(err error) *idp.Error {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return nil
	}
	perr := &idp.Error{Code: rerr.ErrorCode, Message: rerr.ErrorDescription}
	if rerr.Response != nil {
		perr.Status = rerr.Response.StatusCode
	}
	if perr.Message == "" {
		perr.Message = firstNonEmpty(rerr.ErrorCode, http.StatusText(perr.Status))
	}
	return perr
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

func decodeError(resp *http.Response) *idp.Error {
	perr := &idp.Error{Status: resp.StatusCode}
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) != nil {
		body = errorBody{}
	}
	perr.Code = body.Error
	if perr.Code == "" {
		perr.Code = idp.CodeUnexpectedResponse
	}
	perr.Message = firstNonEmpty(body.ErrorDescription, body.Message, body.Error, http.StatusText(resp.StatusCode))
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
