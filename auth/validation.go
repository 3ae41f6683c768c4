package auth

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-authcode-server/clients"
	"github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/oauth2"
)

// Validator provides the parameter presence and client binding checks shared
// by the login and token endpoints.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLoginRequest checks that every required login parameter is present.
func (v *Validator) ValidateLoginRequest(req oauth2.LoginRequest) *oauth2.Error {
	if isBlank(req.Email) || req.Password == "" {
		return oauth2.InvalidRequest(descCredentialsRequired)
	}
	if isBlank(req.ClientID) || isBlank(req.RedirectURI) {
		return oauth2.InvalidRequest(descOAuthParamsMissing)
	}
	return nil
}

// ValidateRedirectURI checks that redirectURI is registered for client and is an absolute URL
// a code can be appended to. Custom schemes without a host are accepted.
func (v *Validator) ValidateRedirectURI(client *clients.Client, redirectURI string) error {
	if !client.HasRedirectURI(redirectURI) {
		return errors.ErrInvalidRedirectURI
	}
	u, err := url.Parse(redirectURI)
	if err != nil || u.Scheme == "" {
		return errors.ErrInvalidRedirectURI
	}
	return nil
}

// ValidateAuthorizationCodeRequest checks the parameters of the authorization_code grant.
func (v *Validator) ValidateAuthorizationCodeRequest(req oauth2.TokenRequest) *oauth2.Error {
	if req.Code == "" || req.RedirectURI == "" || req.ClientID == "" {
		return oauth2.InvalidRequest(descCodeParamsRequired)
	}
	return nil
}

// ValidateRefreshTokenRequest checks the parameters of the refresh_token grant.
func (v *Validator) ValidateRefreshTokenRequest(req oauth2.TokenRequest) *oauth2.Error {
	if req.RefreshToken == "" {
		return oauth2.InvalidRequest(descRefreshTokenRequired)
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
