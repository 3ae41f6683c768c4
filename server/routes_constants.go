package server

// Route path constants
// Every OAuth route is served both at the root and under RoutePrefixOAuth.
const (
	RoutePrefixOAuth = "/oauth"

	RouteLogin  = "/login"
	RouteToken  = "/token"
	RouteMe     = "/me"
	RouteHealth = "/health"
)
