package auth

// Human readable descriptions returned in OAuth2 error responses.
// Credential failures share a single message so that unknown emails and wrong
// passwords are indistinguishable.
const (
	descCredentialsRequired = "Email and password are required"
	descOAuthParamsMissing  = "OAuth parameters missing"
	descInvalidClientID     = "Invalid client_id"
	descInvalidRedirectURI  = "Invalid redirect_uri"
	descInvalidCredentials  = "Invalid email or password"

	descGrantTypeRequired     = "grant_type is required"
	descCodeParamsRequired    = "code, redirect_uri, and client_id are required"
	descInvalidCode           = "Invalid authorization code"
	descCodeExpired           = "Authorization code has expired"
	descCodeMismatch          = "Client ID or redirect URI mismatch"
	descRefreshTokenRequired  = "refresh_token is required"
	descInvalidRefreshToken   = "Invalid or expired refresh token"
	descRefreshTokenRevoked   = "Refresh token has been revoked"
	descRefreshTokenExpired   = "Refresh token has expired"
	descAccessTokenRequired   = "Access token is required"
	descInvalidAccessToken    = "Access token is invalid or expired"
	descInvalidAccessTokenTyp = "Invalid token type"
)
