package auth

import "strings"

// Credentials is the registration payload.
type Credentials struct {
	Email    string `json:"email" validate:"credential=email"`
	Password string `json:"password" validate:"credential=password"`
	FullName string `json:"fullName" validate:"credential=fullname"`
}

// LoginParameters is the sign-in payload. Only the email shape is checked locally;
// the password is the provider's business.
type LoginParameters struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshParameters carries a refresh token, for both logout and refresh.
type RefreshParameters struct {
	RefreshToken string `json:"refresh_token"`
}

// BearerToken extracts the token from an Authorization header value. The scheme is
// matched case-insensitively; anything but "Bearer <token>" yields "".
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	token = strings.TrimSpace(token)
	if strings.ContainsAny(token, " \t") {
		return ""
	}
	return token
}
