package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/skillup-auth/idp"
	"github.com/rs/zerolog/log"
)

// Response messages. Clients match on some of these, keep them stable.
const (
	msgInvalidRequestBody      = "Invalid request body"
	msgRouteNotFound           = "Route not found"
	msgInternalServerError     = "Internal server error"
	msgAccessTokenRequired     = "Access token is required"
	msgInvalidOrExpiredToken   = "Invalid or expired token"
	msgTokenVerificationFailed = "Token verification failed"

	msgUserRegistered       = "User registered successfully"
	msgUserExists           = "User already exists with this email address"
	msgRegistrationFailed   = "Registration failed"
	msgRegistrationInternal = "Internal server error during registration"

	msgLoginSuccessful      = "Login successful"
	msgInvalidEmailPassword = "Invalid email or password"
	msgLoginInternal        = "Internal server error during login"
	msgLogoutSuccessful     = "Logout successful"
	msgLogoutInternal       = "Internal server error during logout"
	msgRefreshTokenRequired = "Refresh token is required"
	msgInvalidRefreshToken  = "Invalid refresh token"
)

const maxRequestBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userBody struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  *string    `json:"full_name,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func newUserBody(u *idp.User, withCreatedAt bool) userBody {
	body := userBody{ID: u.ID, Email: u.Email, FullName: u.FullName}
	if withCreatedAt && !u.CreatedAt.IsZero() {
		createdAt := u.CreatedAt
		body.CreatedAt = &createdAt
	}
	return body
}

type registerResponse struct {
	Message string   `json:"message"`
	User    userBody `json:"user"`
}

type loginResponse struct {
	Message string       `json:"message"`
	User    userBody     `json:"user"`
	Session *idp.Session `json:"session"`
}

type meResponse struct {
	User userBody `json:"user"`
}

type refreshResponse struct {
	Session *idp.Session `json:"session"`
}

type sessionIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	User          *sessionIdentity `json:"user,omitempty"`
}

type publicConfigResponse struct {
	ProviderURL     string `json:"providerUrl"`
	ProviderAnonKey string `json:"providerAnonKey"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("[writeJSON] failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads the request body into v. An empty body leaves v at its zero
// value so that field validation reports what is missing. On failure a 400 has
// already been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgInvalidRequestBody)
		return false
	}
	return true
}
