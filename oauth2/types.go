package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Used in: Standard Authorization Code Flow
	// Token request includes: code, client_id, redirect_uri
	// Returns: access_token, refresh_token
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Used in: Token refresh flow (get new access token without re-authenticating user)
	// Token request includes: refresh_token
	// Returns: new access_token and rotated refresh_token
	// Security: The presented refresh token is revoked before the new pair is minted
	RefreshTokenGrant GrantType = "refresh_token"
)

// BearerTokenType is the only token_type this server issues.
// Usage: Tells client to use "Authorization: Bearer <token>" header
const BearerTokenType = "Bearer"
