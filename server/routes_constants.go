package server

// Route path constants
const (
	RouteAPIPrefix = "/api"

	// Auth routes
	RouteAuthRegister = RouteAPIPrefix + "/auth/register"
	RouteAuthLogin    = RouteAPIPrefix + "/auth/login"
	RouteAuthLogout   = RouteAPIPrefix + "/auth/logout"
	RouteAuthMe       = RouteAPIPrefix + "/auth/me"
	RouteAuthRefresh  = RouteAPIPrefix + "/auth/refresh"
	RouteAuthSession  = RouteAPIPrefix + "/auth/session"

	// Configuration handed to browser clients
	RoutePublicConfig = RouteAPIPrefix + "/config/public"

	RouteHealth = "/healthz"
)
