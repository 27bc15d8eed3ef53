package idp

import (
	"context"
	"time"
)

// WithTimeout bounds every call to p by d. A zero or negative d returns p unchanged,
// leaving calls bounded only by the caller's context.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{next: p, timeout: d}
}

type timeoutProvider struct {
	next    Provider
	timeout time.Duration
}

func (t *timeoutProvider) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.CreateUser(ctx, params)
}

func (t *timeoutProvider) SignInWithPassword(ctx context.Context, email, password string) (*User, *Session, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SignInWithPassword(ctx, email, password)
}

func (t *timeoutProvider) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SignOut(ctx, accessToken, refreshToken)
}

func (t *timeoutProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.GetUser(ctx, accessToken)
}

func (t *timeoutProvider) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.RefreshSession(ctx, refreshToken)
}
