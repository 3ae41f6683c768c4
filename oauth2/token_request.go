package oauth2

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the request body sent to the /token endpoint.
// Supports two grant types: authorization_code, refresh_token
type TokenRequest struct {
	// GrantType selects the grant being exercised.
	// Required: Yes
	// Example: "authorization_code"
	GrantType GrantType `json:"grant_type"`

	// Code is the authorization code received from the /login endpoint.
	// Required: Yes (only for authorization_code grant)
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string `json:"code,omitempty"`

	// RedirectURI must equal the redirect_uri the code was issued for (exact string match).
	// Required: Yes (only for authorization_code grant)
	// Example: "http://localhost:5173/callback"
	RedirectURI string `json:"redirect_uri,omitempty"`

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (only for authorization_code grant)
	// Example: "frontend-app"
	ClientID string `json:"client_id,omitempty"`

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Required: Yes (only for refresh_token grant)
	// Behavior: Rotated - old refresh token invalidated, new one issued
	RefreshToken string `json:"refresh_token,omitempty"`
}
