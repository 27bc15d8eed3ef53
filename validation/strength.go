package validation

import (
	"strings"
	"unicode/utf8"
)

// StrengthLevel buckets a password score for display.
type StrengthLevel string

const (
	StrengthEmpty  StrengthLevel = "empty"
	StrengthWeak   StrengthLevel = "weak"
	StrengthFair   StrengthLevel = "fair"
	StrengthGood   StrengthLevel = "good"
	StrengthStrong StrengthLevel = "strong"
)

// MinClientPasswordScore is the lowest score the registration form accepts.
const MinClientPasswordScore = 3

// Strength is the result of scoring a password against the five checks.
type Strength struct {
	Score    int
	Feedback []string // one entry per failed check
	Level    StrengthLevel
}

// Label is the text shown next to the strength meter.
func (s Strength) Label() string {
	switch s.Level {
	case StrengthEmpty:
		return "Enter a password"
	case StrengthStrong:
		return "Strong password"
	}
	return strings.ToUpper(string(s.Level[:1])) + string(s.Level[1:]) + " - " + strings.Join(s.Feedback, ", ")
}

// PasswordStrength scores a password 0-5, one point per satisfied check.
func PasswordStrength(password string) Strength {
	checks := []struct {
		ok       bool
		feedback string
	}{
		{utf8.RuneCountInString(password) >= MinPasswordLength, "At least 8 characters"},
		{hasLower(password), "Lowercase letter"},
		{hasUpper(password), "Uppercase letter"},
		{hasDigit(password), "Number"},
		{hasSymbol(password), "Special character"},
	}

	var s Strength
	for _, c := range checks {
		if c.ok {
			s.Score++
		} else {
			s.Feedback = append(s.Feedback, c.feedback)
		}
	}

	switch {
	case password == "":
		s.Level = StrengthEmpty
	case s.Score <= 2:
		s.Level = StrengthWeak
	case s.Score == 3:
		s.Level = StrengthFair
	case s.Score == 4:
		s.Level = StrengthGood
	default:
		s.Level = StrengthStrong
	}
	return s
}

// ClientEmail is the form-side email check. It uses the same pattern as Email.
func ClientEmail(email string) error {
	if !IsEmail(email) {
		return fail(FieldEmail, "Please enter a valid email address")
	}
	return nil
}

// ClientPassword is the relaxed form-side rule: any three of the five checks.
func ClientPassword(password string) error {
	if PasswordStrength(password).Score < MinClientPasswordScore {
		return fail(FieldPassword, "Password must be at least 8 characters with uppercase, lowercase, number, and special character")
	}
	return nil
}

// ClientFullName is the form-side display name check.
func ClientFullName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinFullNameLength || n > MaxFullNameLength {
		return fail(FieldFullName, "Full name must be 2-50 characters long")
	}
	return nil
}

// ConfirmPassword checks that both password entries match.
func ConfirmPassword(password, confirm string) error {
	if password != confirm {
		return fail(FieldConfirmPassword, "Passwords do not match")
	}
	return nil
}

// AgreeTerms checks the terms and conditions box.
func AgreeTerms(agreed bool) error {
	if !agreed {
		return fail(FieldTerms, "You must agree to the terms and conditions")
	}
	return nil
}

// Errors collects every failing field of a form, in form order.
type Errors []*Error

func (e Errors) Error() string {
	reasons := make([]string, len(e))
	for i, err := range e {
		reasons[i] = err.Reason
	}
	return strings.Join(reasons, "; ")
}

// Field returns the failure for field, or nil.
func (e Errors) Field(field string) *Error {
	for _, err := range e {
		if err.Field == field {
			return err
		}
	}
	return nil
}

// RegistrationForm runs the form-side checks for a sign-up form and returns
// every failure, or nil when the form is acceptable.
func RegistrationForm(fullName, email, password, confirm string, agreeTerms bool) error {
	var errs Errors
	for _, err := range []error{
		ClientFullName(fullName),
		ClientEmail(email),
		ClientPassword(password),
		ConfirmPassword(password, confirm),
		AgreeTerms(agreeTerms),
	} {
		if err != nil {
			errs = append(errs, err.(*Error))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
