package server

func (s *Server) initRoutes() {
	for _, prefix := range []string{"", RoutePrefixOAuth} {
		s.RegisterRouteFunc("POST "+prefix+RouteLogin, ChainMiddleware(s.LoginHandler(), s.RateLimitedMiddleware()...))
		s.RegisterRouteFunc("POST "+prefix+RouteToken, ChainMiddleware(s.TokenHandler(), s.RateLimitedMiddleware()...))
		s.RegisterRouteFunc("GET "+prefix+RouteMe, ChainMiddleware(s.MeHandler(), s.RequireAuth()))
	}

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteFunc("/", s.NotFoundHandler())
}
