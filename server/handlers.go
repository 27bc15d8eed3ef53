package server

import (
	"net/http"

	"github.com/jrsteele09/skillup-auth/internal/config"
)

// PublicConfigHandler hands browser clients the provider address and public key.
// The service key is never exposed.
func (s *Server) PublicConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := s.config.GetProvider()
		resp := publicConfigResponse{ProviderURL: provider.PublicURL()}
		if provider.Kind == config.ProviderGoTrue {
			resp.ProviderAnonKey = provider.AnonKey
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, msgRouteNotFound)
	}
}
