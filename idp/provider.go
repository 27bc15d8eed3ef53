// Package idp defines the port to the external identity provider. The gateway
// treats the provider as authoritative: it never hashes passwords, signs
// tokens or stores sessions itself.
package idp

import (
	"context"
	"time"
)

// User is the provider's view of an account. It is read-only to this system.
type User struct {
	ID        string
	Email     string
	FullName  *string
	CreatedAt time.Time
}

// Session is the token pair issued by the provider. ExpiresAt is a unix timestamp in seconds.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// CreateUserParams are the inputs to an admin user creation. New users are created confirmed.
type CreateUserParams struct {
	Email    string
	Password string
	FullName string
}

// Provider is the set of capabilities the gateway needs from an identity provider.
//
// Failures reported by the provider itself are returned as *Error. Any other
// error (transport, malformed response) is unexpected and must not be shown to end users.
type Provider interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*User, *Session, error)
	SignOut(ctx context.Context, accessToken, refreshToken string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
}
