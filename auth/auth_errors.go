package auth

import (
	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/jrsteele09/skillup-auth/internal/errors"
)

var (
	ErrDuplicateUser        = errors.ErrUserAlreadyExists
	ErrInvalidCredentials   = errors.ErrInvalidCredentials
	ErrInvalidToken         = errors.ErrInvalidToken
	ErrInvalidRefreshToken  = errors.ErrInvalidRefreshToken
	ErrRefreshTokenRequired = errors.ErrRefreshTokenRequired
	ErrTokenRequired        = errors.ErrTokenRequired
)

// ProviderError is a rejection reported by the identity provider. Kind, when set,
// is the domain error the rejection stands for in this operation.
type ProviderError struct {
	Op   string
	Kind error
	Err  *idp.Error
}

func (e *ProviderError) Error() string {
	if e.Kind != nil {
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Message
	}
	return e.Op + ": " + e.Err.Message
}

// Message is the provider's wording, safe to return to the caller.
func (e *ProviderError) Message() string {
	return e.Err.Message
}

func (e *ProviderError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

func providerError(op string, kind error, err error) error {
	perr, ok := idp.AsError(err)
	if !ok {
		return nil
	}
	return &ProviderError{Op: op, Kind: kind, Err: perr}
}
