package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/skillup-auth/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyIdentity stores the *auth.Identity of an authenticated request
	ContextKeyIdentity ContextKey = "identity"
	// ContextKeyRequestID stores the request id
	ContextKeyRequestID ContextKey = "request_id"
)

// IdentityFromContext returns the identity attached by RequireAuth or OptionalAuth.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(*auth.Identity)
	return identity, ok && identity != nil
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// RequireAuth admits only requests carrying a token the provider accepts.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			res := s.gateway.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if res.Kind != auth.Authenticated {
				status, message := rejection(res.Err)
				writeError(w, status, message)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyIdentity, res.Identity)))
		}
	}
}

// OptionalAuth attaches the identity when the token is valid and otherwise lets
// the request through anonymously. It never rejects.
func (s *Server) OptionalAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			res := s.gateway.Authenticate(r.Context(), r.Header.Get("Authorization")).Optional()
			if res.Kind == auth.Authenticated {
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyIdentity, res.Identity))
			}
			next(w, r)
		}
	}
}

func rejection(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrTokenRequired):
		return http.StatusUnauthorized, msgAccessTokenRequired
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusForbidden, msgInvalidOrExpiredToken
	default:
		return http.StatusForbidden, msgTokenVerificationFailed
	}
}
