package server

func (s *Server) initRoutes() {
	// Public auth routes
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))

	// Bearer token required
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Bearer token optional
	s.RegisterRouteFunc("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware(s.OptionalAuth())...))

	s.RegisterRouteFunc("GET "+RoutePublicConfig, ChainMiddleware(s.PublicConfigHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc(RouteAPIPrefix+"/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
}
