package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/url"
	"time"

	"github.com/jrsteele09/go-authcode-server/auth/codes"
	"github.com/jrsteele09/go-authcode-server/clients"
	autherrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/oauth2"
	"github.com/jrsteele09/go-authcode-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	codeGenerationLength = 32 // 256 bits
	defaultAuthCodeTTL   = 10 * time.Minute
)

// Repos holds the repository dependencies for the AuthorizationService
type Repos struct {
	Users   users.UserRepo // Repository for user data
	Clients clients.Repo   // Client registry
	Codes   codes.Repo     // Authorization code store, written only by the AuthorizationService
}

// AuthorizationService authenticates resource owners and issues authorization codes.
type AuthorizationService struct {
	repos     Repos
	validator *Validator
	codeTTL   time.Duration
	nowTime   func() time.Time // nowTime function (injectable for testing)
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithCodeTimeout sets the lifetime of issued authorization codes.
func WithCodeTimeout(ttl time.Duration) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.codeTTL = ttl
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
func NewAuthorizationService(repos Repos, options ...AuthorizationServiceOption) (*AuthorizationService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewAuthorizationService] Users repo is required")
	}
	if repos.Clients == nil {
		return nil, errors.New("[NewAuthorizationService] Clients repo is required")
	}
	if repos.Codes == nil {
		return nil, errors.New("[NewAuthorizationService] Codes repo is required")
	}

	as := &AuthorizationService{
		repos:     repos,
		validator: NewValidator(),
		codeTTL:   defaultAuthCodeTTL,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Login verifies the user's credentials against the requesting client and, on
// success, stores a new authorization code and returns the client callback URL
// carrying it. Failures are returned as *oauth2.Error; no code is stored.
func (as *AuthorizationService) Login(ctx context.Context, req oauth2.LoginRequest) (*oauth2.LoginResponse, error) {
	if oauthErr := as.validator.ValidateLoginRequest(req); oauthErr != nil {
		return nil, oauthErr
	}

	client, err := as.repos.Clients.Get(req.ClientID)
	if err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return nil, oauth2.InvalidClient(descInvalidClientID).WithCause(autherrors.ErrInvalidClient)
		}
		return nil, oauth2.ServerError(errors.Wrap(err, "[AuthorizationService.Login] Clients.Get"))
	}

	if err := as.validator.ValidateRedirectURI(client, req.RedirectURI); err != nil {
		return nil, oauth2.InvalidRequest(descInvalidRedirectURI).WithCause(err)
	}

	user, err := as.repos.Users.GetByEmail(req.Email)
	if err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return nil, invalidCredentials(autherrors.ErrUserNotFound)
		}
		return nil, oauth2.ServerError(errors.Wrap(err, "[AuthorizationService.Login] Users.GetByEmail"))
	}

	if !user.CheckPassword(req.Password) {
		return nil, invalidCredentials(autherrors.ErrInvalidCredentials)
	}

	code, err := generateAuthorizationCode()
	if err != nil {
		return nil, oauth2.ServerError(errors.Wrap(err, "[AuthorizationService.Login] generateAuthorizationCode"))
	}

	if err := as.repos.Codes.Set(ctx, &codes.AuthorizationCode{
		Code:        code,
		ClientID:    client.ID,
		RedirectURI: req.RedirectURI,
		UserID:      user.ID,
		Email:       user.Email,
		ExpiresAt:   as.nowTime().Add(as.codeTTL),
	}); err != nil {
		return nil, oauth2.ServerError(errors.Wrap(err, "[AuthorizationService.Login] Codes.Set"))
	}

	redirectURL, err := buildRedirectURL(req.RedirectURI, code, req.State)
	if err != nil {
		_ = as.repos.Codes.Delete(ctx, code)
		return nil, oauth2.InvalidRequest(descInvalidRedirectURI).WithCause(err)
	}

	log.Debug().Str("client_id", client.ID).Str("user_id", user.ID).Msg("authorization code issued")
	return &oauth2.LoginResponse{RedirectURL: redirectURL}, nil
}

func invalidCredentials(cause error) *oauth2.Error {
	return oauth2.AccessDenied(descInvalidCredentials).WithCause(cause)
}

// generateAuthorizationCode returns a base64url encoded random value.
func generateAuthorizationCode() (string, error) {
	bytes := make([]byte, codeGenerationLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// buildRedirectURL appends code, and state when supplied, to the query of redirectURI.
func buildRedirectURL(redirectURI, code, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", errors.Wrap(err, "[buildRedirectURL] invalid redirect URI")
	}
	q := u.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
