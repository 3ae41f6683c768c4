package oauth2

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749.
// Returned from the /token endpoint for both grant types.
type TokenResponse struct {
	// AccessToken is the JWT token used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: Short-lived (JWT_EXPIRES_IN, default 1 hour)
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token (always "Bearer").
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 3600
	// Note: This is a hint - actual expiration is in the JWT's "exp" claim
	ExpiresIn int `json:"expires_in"`

	// RefreshToken is a signed JWT used to obtain new access tokens.
	// Usage: Send to /token endpoint with grant_type=refresh_token
	// Lifespan: Long-lived (7 days), tracked server-side
	// Security: Should be stored securely, rotates on each use
	RefreshToken string `json:"refresh_token"`
}
