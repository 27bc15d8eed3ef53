// Package validation checks the shape and strength of user credentials before
// any call to the identity provider. Every check is a pure function that
// returns an *Error carrying a human-readable reason.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MinFullNameLength = 2
	MaxFullNameLength = 50

	// PasswordSymbols is the punctuation set that satisfies the symbol rule.
	PasswordSymbols = `!@#$%^&*(),.?":{}|<>`
)

// emailPattern requires a local part, '@' and a domain containing a dot.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field names used in Error.Field
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "fullName"
	FieldConfirmPassword = "confirmPassword"
	FieldTerms           = "terms"
)

// Error is a validation failure for a single field.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func fail(field, reason string) *Error {
	return &Error{Field: field, Reason: reason}
}

// IsEmail reports whether s has the local@domain.tld shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Email is the server-side email check.
func Email(email string) error {
	if email == "" {
		return fail(FieldEmail, "Email is required")
	}
	if !IsEmail(email) {
		return fail(FieldEmail, "Please provide a valid email address")
	}
	return nil
}

// Password is the strict server-side password policy. Checks run in a fixed
// order and the first failure wins.
func Password(password string) error {
	switch {
	case password == "":
		return fail(FieldPassword, "Password is required")
	// Length counts runes, so an emoji is one character here.
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return fail(FieldPassword, "Password must be at least 8 characters long")
	case !hasUpper(password):
		return fail(FieldPassword, "Password must contain at least one uppercase letter")
	case !hasLower(password):
		return fail(FieldPassword, "Password must contain at least one lowercase letter")
	case !hasDigit(password):
		return fail(FieldPassword, "Password must contain at least one number")
	case !hasSymbol(password):
		return fail(FieldPassword, "Password must contain at least one special character")
	}
	return nil
}

// FullName checks the trimmed display name length.
func FullName(name string) error {
	if name == "" {
		return fail(FieldFullName, "Full name is required")
	}
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinFullNameLength {
		return fail(FieldFullName, "Full name must be at least 2 characters long")
	}
	if n > MaxFullNameLength {
		return fail(FieldFullName, "Full name must be less than 50 characters")
	}
	return nil
}

func hasUpper(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' })
}

func hasLower(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' })
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
}

func hasSymbol(s string) bool {
	return strings.ContainsAny(s, PasswordSymbols)
}
