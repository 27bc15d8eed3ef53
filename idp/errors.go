package idp

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes shared by the providers in this module
const (
	CodeEmailExists        = "email_exists"
	CodeUserAlreadyExists  = "user_already_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "bad_jwt"
	CodeRefreshNotFound    = "refresh_token_not_found"
	CodeWeakPassword       = "weak_password"
	CodeSignupDisabled     = "signup_disabled"
	CodeUnexpectedResponse = "unexpected_response"
)

// Error is a failure reported by the identity provider.
type Error struct {
	Status  int    // HTTP status returned by the provider, 0 if unknown
	Code    string // stable machine-readable code, empty if the provider gave none
	Message string // provider wording, safe to show to the caller
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("identity provider: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("identity provider: %s: %s (status %d)", e.Code, e.Message, e.Status)
}

// AsError returns the provider error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

// IsDuplicateUser reports whether err is the provider rejecting a registration
// because the email is already taken. Structured codes are checked first; providers
// that only send prose are matched on their "already ... registered" wording.
func IsDuplicateUser(err error) bool {
	perr, ok := AsError(err)
	if !ok {
		return false
	}
	switch perr.Code {
	case CodeEmailExists, CodeUserAlreadyExists:
		return true
	}
	msg := strings.ToLower(perr.Message)
	return strings.Contains(msg, "already") && strings.Contains(msg, "registered")
}
