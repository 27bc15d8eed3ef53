package auth

import (
	"context"

	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/internal/errors"
	"github.com/rs/zerolog/log"
)

// ResultKind tells a route what the authentication step concluded.
type ResultKind int

const (
	Anonymous ResultKind = iota
	Authenticated
	Rejected
)

func (k ResultKind) String() string {
	switch k {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "anonymous"
	}
}

// Identity is attached to an authenticated request.
type Identity struct {
	UserID      string
	Email       string
	AccessToken string
}

var ErrVerificationFailed = errors.New("token verification failed")

// Result is the outcome of Authenticate. Identity is set for Authenticated;
// Err is set for Rejected and is one of ErrTokenRequired, ErrInvalidToken
// or ErrVerificationFailed.
type Result struct {
	Kind     ResultKind
	Identity *Identity
	Err      error
}

// Authenticate verifies the bearer token in an Authorization header value.
// A missing token is Rejected with ErrTokenRequired; routes that allow
// anonymous access downgrade that to Anonymous themselves. Verification fails closed.
func (g *Gateway) Authenticate(ctx context.Context, authorizationHeader string) Result {
	token := BearerToken(authorizationHeader)
	if token == "" {
		return Result{Kind: Rejected, Err: ErrTokenRequired}
	}

	user, err := g.provider.GetUser(ctx, token)
	if err != nil {
		if _, ok := idp.AsError(err); ok {
			return Result{Kind: Rejected, Err: ErrInvalidToken}
		}
		log.Err(err).Msg("[Authenticate] token verification failed")
		return Result{Kind: Rejected, Err: ErrVerificationFailed}
	}
	if user == nil {
		return Result{Kind: Rejected, Err: ErrInvalidToken}
	}

	return Result{
		Kind: Authenticated,
		Identity: &Identity{
			UserID:      user.ID,
			Email:       user.Email,
			AccessToken: token,
		},
	}
}

// Optional converts any rejection to Anonymous.
func (r Result) Optional() Result {
	if r.Kind == Rejected {
		return Result{Kind: Anonymous}
	}
	return r
}
