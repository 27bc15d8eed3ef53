package validation_test

import (
	"testing"

	"github.com/jrsteele09/skillup-auth/validation"
	"github.com/stretchr/testify/require"
)

func requireReason(t *testing.T, err error, field, reason string) {
	t.Helper()
	require.Error(t, err)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, field, verr.Field)
	require.Equal(t, reason, verr.Reason)
}

func TestEmail(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, email := range []string{"new@x.com", "a.b+c@sub.example.org", "x@y.z"} {
			require.NoError(t, validation.Email(email), email)
		}
	})

	t.Run("empty", func(t *testing.T) {
		requireReason(t, validation.Email(""), validation.FieldEmail, "Email is required")
	})

	t.Run("invalid shapes", func(t *testing.T) {
		for _, email := range []string{"userexample.com", "user@example", "@example.com", "user@.", "us er@example.com", "user@exa mple.com"} {
			requireReason(t, validation.Email(email), validation.FieldEmail, "Please provide a valid email address")
		}
	})
}

func TestEmail_ClientAndServerAgree(t *testing.T) {
	cases := []string{
		"new@x.com", "first.last@domain.co.uk", "nodomain@", "no-at-sign.com",
		"user@nodot", "a@b.c", "two@@example.com", " spaced@example.com", "",
	}
	for _, email := range cases {
		t.Run(email, func(t *testing.T) {
			serverErr := validation.Email(email)
			clientErr := validation.ClientEmail(email)
			require.Equal(t, serverErr == nil, clientErr == nil)
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		reason   string
	}{
		{"valid", "Abcd123!", ""},
		{"valid long", "MyS3cure!P@ssw0rd#2024", ""},
		{"empty", "", "Password is required"},
		{"too short", "Ab1!", "Password must be at least 8 characters long"},
		{"seven chars", "Abcd12!", "Password must be at least 8 characters long"},
		{"emoji counts as one character", "Ab1!😀😀😀", "Password must be at least 8 characters long"},
		{"eight runes with emoji", "Ab1!😀😀😀x", ""},
		{"no uppercase", "abcd123!", "Password must contain at least one uppercase letter"},
		{"no lowercase", "ABCD123!", "Password must contain at least one lowercase letter"},
		{"no digit", "Abcdefg!", "Password must contain at least one number"},
		{"no symbol", "Abcd1234", "Password must contain at least one special character"},
		{"symbol outside the set", "Abcd123_", "Password must contain at least one special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Password(tt.password)
			if tt.reason == "" {
				require.NoError(t, err)
				return
			}
			requireReason(t, err, validation.FieldPassword, tt.reason)
		})
	}
}

func TestFullName(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validation.FullName("Jane Doe"))
		require.NoError(t, validation.FullName("  Jo  "))
	})

	t.Run("empty", func(t *testing.T) {
		requireReason(t, validation.FullName(""), validation.FieldFullName, "Full name is required")
	})

	t.Run("too short after trim", func(t *testing.T) {
		requireReason(t, validation.FullName("  J "), validation.FieldFullName, "Full name must be at least 2 characters long")
	})

	t.Run("too long", func(t *testing.T) {
		long := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxy" // 51
		requireReason(t, validation.FullName(long), validation.FieldFullName, "Full name must be less than 50 characters")
		require.NoError(t, validation.FullName(long[:50]))
	})
}
