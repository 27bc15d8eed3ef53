package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/skillup-auth/auth"
	"github.com/jrsteele09/skillup-auth/validation"
	"github.com/rs/zerolog/log"
)

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverWith(w, r, msgRegistrationInternal)

		var creds auth.Credentials
		if !decodeJSON(w, r, &creds) {
			return
		}

		user, err := s.gateway.Register(r.Context(), creds)
		if err != nil {
			var verr *validation.Error
			var perr *auth.ProviderError
			switch {
			case errors.As(err, &verr):
				writeError(w, http.StatusBadRequest, verr.Reason)
			case errors.Is(err, auth.ErrDuplicateUser):
				writeError(w, http.StatusBadRequest, msgUserExists)
			case errors.As(err, &perr):
				log.Warn().Err(err).Msg("[RegisterHandler] provider rejected registration")
				message := perr.Message()
				if message == "" {
					message = msgRegistrationFailed
				}
				writeError(w, http.StatusBadRequest, message)
			default:
				log.Err(err).Msg("[RegisterHandler] registration failed")
				writeError(w, http.StatusInternalServerError, msgRegistrationInternal)
			}
			return
		}

		writeJSON(w, http.StatusCreated, registerResponse{
			Message: msgUserRegistered,
			User:    newUserBody(user, false),
		})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverWith(w, r, msgLoginInternal)

		var params auth.LoginParameters
		if !decodeJSON(w, r, &params) {
			return
		}

		user, session, err := s.gateway.Login(r.Context(), params.Email, params.Password)
		if err != nil {
			var verr *validation.Error
			switch {
			case errors.As(err, &verr):
				writeError(w, http.StatusBadRequest, verr.Reason)
			case errors.Is(err, auth.ErrInvalidCredentials):
				writeError(w, http.StatusUnauthorized, msgInvalidEmailPassword)
			default:
				log.Err(err).Msg("[LoginHandler] login failed")
				writeError(w, http.StatusInternalServerError, msgLoginInternal)
			}
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{
			Message: msgLoginSuccessful,
			User:    newUserBody(user, false),
			Session: session,
		})
	}
}

// LogoutHandler always succeeds once the caller is authenticated; provider
// sign-out is best effort.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverWith(w, r, msgLogoutInternal)

		var params auth.RefreshParameters
		if !decodeJSON(w, r, &params) {
			return
		}
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, msgAccessTokenRequired)
			return
		}

		s.gateway.Logout(r.Context(), identity.AccessToken, params.RefreshToken)
		writeJSON(w, http.StatusOK, messageResponse{Message: msgLogoutSuccessful})
	}
}

// MeHandler asks the provider again rather than trusting the middleware's lookup.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverWith(w, r, msgInternalServerError)

		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, msgAccessTokenRequired)
			return
		}

		user, err := s.gateway.GetCurrentUser(r.Context(), identity.AccessToken)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, msgInvalidOrExpiredToken)
				return
			}
			log.Err(err).Msg("[MeHandler] get current user failed")
			writeError(w, http.StatusInternalServerError, msgInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, meResponse{User: newUserBody(user, true)})
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverWith(w, r, msgInternalServerError)

		var params auth.RefreshParameters
		if !decodeJSON(w, r, &params) {
			return
		}

		session, err := s.gateway.RefreshSession(r.Context(), params.RefreshToken)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrRefreshTokenRequired):
				writeError(w, http.StatusBadRequest, msgRefreshTokenRequired)
			case errors.Is(err, auth.ErrInvalidRefreshToken):
				writeError(w, http.StatusUnauthorized, msgInvalidRefreshToken)
			default:
				log.Err(err).Msg("[RefreshHandler] refresh failed")
				writeError(w, http.StatusInternalServerError, msgInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, refreshResponse{Session: session})
	}
}

// SessionHandler reports whether the caller's token is currently valid.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{
			Authenticated: true,
			User:          &sessionIdentity{ID: identity.UserID, Email: identity.Email},
		})
	}
}
