// Package server exposes the auth gateway over HTTP under /api.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/skillup-auth/auth"
	"github.com/jrsteele09/skillup-auth/internal/config"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env     string // Environment (e.g. "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config
	gateway *auth.Gateway
}

func New(cfg config.Config, gateway *auth.Gateway) (*Server, error) {
	if gateway == nil {
		return nil, fmt.Errorf("[Server New] gateway is required")
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		gateway: gateway,
	}

	// CORS wraps the mux so preflight requests are answered before route matching
	s.handler = newCors(cfg).Handler(s.mux)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func newCors(cfg config.CorsConfig) *cors.Cors {
	origins := cfg.GetAllowedOrigins()
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   cfg.GetAllowedMethods(),
		AllowedHeaders:   cfg.GetAllowedHeaders(),
		AllowCredentials: !origins.IsAllowedOrigin("*"),
		MaxAge:           86400,
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered route patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}
