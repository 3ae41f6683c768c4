package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-authcode-server/auth/codes"
	autherrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/oauth2"
	"github.com/jrsteele09/go-authcode-server/token"
	"github.com/jrsteele09/go-authcode-server/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultAccessTokenExpiry   = time.Hour
	defaultRefreshTokenExpiry  = 7 * 24 * time.Hour
	defaultRefreshRecordExpiry = 7 * 24 * time.Hour
)

// TokenRepos holds the stores the TokenService consumes.
type TokenRepos struct {
	Codes         codes.Repo   // Read and consumed here, written by the AuthorizationService
	RefreshTokens refresh.Repo // Owned exclusively by the TokenService
}

// TokenService redeems authorization codes and refresh tokens for token pairs.
type TokenService struct {
	repos               TokenRepos
	codec               token.Codec
	validator           *Validator
	accessTokenExpiry   time.Duration
	refreshTokenExpiry  time.Duration
	refreshRecordExpiry time.Duration
	nowTime             func() time.Time
}

type TokenServiceOption func(*TokenService)

// WithTokenNowTime sets the now time function (primarily for testing)
func WithTokenNowTime(nowFunc func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		ts.nowTime = nowFunc
	}
}

// WithTokenExpiry sets the lifetimes embedded in signed access and refresh tokens.
func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		ts.accessTokenExpiry = accessTokenExpiry
		ts.refreshTokenExpiry = refreshTokenExpiry
	}
}

// WithRefreshRecordExpiry sets the server-side lifetime of stored refresh token records.
func WithRefreshRecordExpiry(expiry time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		ts.refreshRecordExpiry = expiry
	}
}

func NewTokenService(repos TokenRepos, codec token.Codec, options ...TokenServiceOption) (*TokenService, error) {
	if repos.Codes == nil {
		return nil, errors.New("[NewTokenService] Codes repo is required")
	}
	if repos.RefreshTokens == nil {
		return nil, errors.New("[NewTokenService] RefreshTokens repo is required")
	}
	if codec == nil {
		return nil, errors.New("[NewTokenService] codec is required")
	}

	ts := &TokenService{
		repos:               repos,
		codec:               codec,
		validator:           NewValidator(),
		accessTokenExpiry:   defaultAccessTokenExpiry,
		refreshTokenExpiry:  defaultRefreshTokenExpiry,
		refreshRecordExpiry: defaultRefreshRecordExpiry,
		nowTime:             time.Now,
	}
	for _, opt := range options {
		opt(ts)
	}
	return ts, nil
}

// Token handles the OAuth 2.0 token request, dispatching on grant_type.
// Failures are returned as *oauth2.Error.
func (ts *TokenService) Token(ctx context.Context, req oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	switch req.GrantType {
	case "":
		return nil, oauth2.InvalidRequest(descGrantTypeRequired)
	case oauth2.AuthorizationCodeGrant:
		return ts.authorizationCodeGrant(ctx, req)
	case oauth2.RefreshTokenGrant:
		return ts.refreshTokenGrant(ctx, req)
	default:
		return nil, oauth2.UnsupportedGrantType(req.GrantType)
	}
}

func (ts *TokenService) authorizationCodeGrant(ctx context.Context, req oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	if oauthErr := ts.validator.ValidateAuthorizationCodeRequest(req); oauthErr != nil {
		return nil, oauthErr
	}

	authCode, err := ts.repos.Codes.Get(ctx, req.Code)
	if err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return nil, codeGrantError(descInvalidCode, autherrors.ErrInvalidAuthorizationCode)
		}
		return nil, oauth2.ServerError(errors.Wrap(err, "[TokenService.authorizationCodeGrant] Codes.Get"))
	}

	if authCode.Expired(ts.nowTime()) {
		if err := ts.repos.Codes.Delete(ctx, req.Code); err != nil && !autherrors.Is(err, autherrors.ErrNotFound) {
			log.Warn().Err(err).Msg("failed to delete expired authorization code")
		}
		return nil, codeGrantError(descCodeExpired, autherrors.ErrAuthorizationCodeExpired)
	}

	// A mismatched request does not consume the code: it stays redeemable by the
	// rightful client until it expires.
	if authCode.ClientID != req.ClientID || authCode.RedirectURI != req.RedirectURI {
		log.Warn().Str("client_id", req.ClientID).Msg("authorization code presented with mismatched client or redirect URI")
		return nil, codeGrantError(descCodeMismatch, autherrors.ErrAuthorizationMismatch)
	}

	// Delete is the single-use gate; a concurrent redemption that lost the race sees ErrNotFound.
	if err := ts.repos.Codes.Delete(ctx, req.Code); err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return nil, codeGrantError(descInvalidCode, autherrors.ErrInvalidAuthorizationCode)
		}
		return nil, oauth2.ServerError(errors.Wrap(err, "[TokenService.authorizationCodeGrant] Codes.Delete"))
	}

	resp, err := ts.issueTokenPair(ctx, authCode.UserID, authCode.Email)
	if err != nil {
		return nil, oauth2.ServerError(errors.Wrap(err, "[TokenService.authorizationCodeGrant]"))
	}

	log.Debug().Str("client_id", authCode.ClientID).Str("user_id", authCode.UserID).Msg("authorization code redeemed")
	return resp, nil
}

func (ts *TokenService) refreshTokenGrant(ctx context.Context, req oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	if oauthErr := ts.validator.ValidateRefreshTokenRequest(req); oauthErr != nil {
		return nil, oauthErr
	}

	payload, err := ts.codec.Verify(req.RefreshToken)
	if err != nil {
		return nil, refreshGrantError(descInvalidRefreshToken, err)
	}
	if payload.Type != token.TypeRefresh {
		return nil, refreshGrantError(descInvalidRefreshToken, autherrors.ErrInvalidTokenType)
	}

	stored, err := ts.repos.RefreshTokens.Get(ctx, req.RefreshToken)
	if err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return nil, refreshGrantError(descRefreshTokenRevoked, autherrors.ErrTokenRevoked)
		}
		return nil, oauth2.ServerError(errors.Wrap(err, "[TokenService.refreshTokenGrant] RefreshTokens.Get"))
	}

	if stored.Expired(ts.nowTime()) {
		if err := ts.repos.RefreshTokens.Delete(ctx, req.RefreshToken); err != nil && !autherrors.Is(err, autherrors.ErrNotFound) {
			log.Warn().Err(err).Msg("failed to delete expired refresh token")
		}
		return nil, refreshGrantError(descRefreshTokenExpired, autherrors.ErrTokenExpired)
	}

	// Rotation: the presented token is revoked before replacements are minted.
	if err := ts.repos.RefreshTokens.Delete(ctx, req.RefreshToken); err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return nil, refreshGrantError(descRefreshTokenRevoked, autherrors.ErrTokenRevoked)
		}
		return nil, oauth2.ServerError(errors.Wrap(err, "[TokenService.refreshTokenGrant] RefreshTokens.Delete"))
	}

	resp, err := ts.issueTokenPair(ctx, payload.UserID, payload.Email)
	if err != nil {
		return nil, oauth2.ServerError(errors.Wrap(err, "[TokenService.refreshTokenGrant]"))
	}

	log.Debug().Str("user_id", payload.UserID).Msg("refresh token rotated")
	return resp, nil
}

// issueTokenPair mints an access/refresh pair for the subject and records the refresh token.
func (ts *TokenService) issueTokenPair(ctx context.Context, userID, email string) (*oauth2.TokenResponse, error) {
	accessToken, err := ts.codec.Sign(token.Payload{UserID: userID, Email: email, Type: token.TypeAccess}, ts.accessTokenExpiry)
	if err != nil {
		return nil, errors.Wrap(err, "sign access token")
	}
	refreshToken, err := ts.codec.Sign(token.Payload{UserID: userID, Email: email, Type: token.TypeRefresh}, ts.refreshTokenExpiry)
	if err != nil {
		return nil, errors.Wrap(err, "sign refresh token")
	}

	if err := ts.repos.RefreshTokens.Set(ctx, &refresh.StoredRefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: ts.nowTime().Add(ts.refreshRecordExpiry),
	}); err != nil {
		return nil, errors.Wrap(err, "store refresh token")
	}

	return &oauth2.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    oauth2.BearerTokenType,
		ExpiresIn:    int(ts.accessTokenExpiry / time.Second),
		RefreshToken: refreshToken,
	}, nil
}

// Authenticate verifies a bearer access token and returns its subject.
func (ts *TokenService) Authenticate(rawToken string) (*token.Payload, error) {
	if rawToken == "" {
		return nil, oauth2.Unauthorized(descAccessTokenRequired)
	}
	payload, err := ts.codec.Verify(rawToken)
	if err != nil {
		return nil, oauth2.InvalidToken(descInvalidAccessToken).WithCause(err)
	}
	if payload.Type != token.TypeAccess {
		return nil, oauth2.InvalidToken(descInvalidAccessTokenTyp).WithCause(autherrors.ErrInvalidTokenType)
	}
	return payload, nil
}

func codeGrantError(description string, cause error) *oauth2.Error {
	return oauth2.InvalidGrant(http.StatusBadRequest, description).WithCause(cause)
}

func refreshGrantError(description string, cause error) *oauth2.Error {
	return oauth2.InvalidGrant(http.StatusUnauthorized, description).WithCause(cause)
}
