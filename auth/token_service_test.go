package auth_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-authcode-server/auth"
	"github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/oauth2"
	"github.com/jrsteele09/go-authcode-server/token"
	"github.com/stretchr/testify/require"
)

func codeRequest(code string) oauth2.TokenRequest {
	return oauth2.TokenRequest{
		GrantType:   oauth2.AuthorizationCodeGrant,
		Code:        code,
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
	}
}

func refreshRequest(refreshToken string) oauth2.TokenRequest {
	return oauth2.TokenRequest{
		GrantType:    oauth2.RefreshTokenGrant,
		RefreshToken: refreshToken,
	}
}

// exchange logs in and redeems the resulting code
func (f *testFixture) exchange(t *testing.T) *oauth2.TokenResponse {
	t.Helper()

	resp, err := f.tokenService.Token(context.Background(), codeRequest(f.login(t, defaultLoginRequest())))
	require.NoError(t, err)
	return resp
}

func TestNewTokenService_RequiresDependencies(t *testing.T) {
	f := setupTestFixture(t)

	_, err := auth.NewTokenService(auth.TokenRepos{}, f.codec)
	require.Error(t, err)

	_, err = auth.NewTokenService(auth.TokenRepos{Codes: f.codeRepo, RefreshTokens: f.refreshRepo}, nil)
	require.Error(t, err)
}

func TestToken_GrantTypeDispatch(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.tokenService.Token(context.Background(), oauth2.TokenRequest{})
	oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidRequest, http.StatusBadRequest)
	require.Equal(t, "grant_type is required", oauthErr.Description)

	_, err = f.tokenService.Token(context.Background(), oauth2.TokenRequest{GrantType: "client_credentials"})
	requireOAuthError(t, err, oauth2.ErrorUnsupportedGrantType, http.StatusBadRequest)
}

func TestToken_AuthorizationCodeGrant(t *testing.T) {
	f := setupTestFixture(t)
	code := f.login(t, defaultLoginRequest())

	resp, err := f.tokenService.Token(context.Background(), codeRequest(code))
	require.NoError(t, err)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, 3600, resp.ExpiresIn)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	access, err := f.codec.Verify(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, token.Payload{UserID: testUserID, Email: testUserEmail, Type: token.TypeAccess}, *access)

	rt, err := f.codec.Verify(resp.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, token.TypeRefresh, rt.Type)

	stored, err := f.refreshRepo.Get(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, testUserID, stored.UserID)
	require.Equal(t, f.clock.Now().Add(7*24*time.Hour), stored.ExpiresAt)

	require.Equal(t, 0, f.codeRepo.Len(), "code must be consumed")
}

func TestToken_AuthorizationCodeMissingParameters(t *testing.T) {
	f := setupTestFixture(t)
	code := f.login(t, defaultLoginRequest())

	for _, modify := range []func(*oauth2.TokenRequest){
		func(r *oauth2.TokenRequest) { r.Code = "" },
		func(r *oauth2.TokenRequest) { r.ClientID = "" },
		func(r *oauth2.TokenRequest) { r.RedirectURI = "" },
	} {
		req := codeRequest(code)
		modify(&req)
		_, err := f.tokenService.Token(context.Background(), req)
		requireOAuthError(t, err, oauth2.ErrorInvalidRequest, http.StatusBadRequest)
	}
	require.Equal(t, 1, f.codeRepo.Len())
}

func TestToken_CodeRedeemableOnlyOnce(t *testing.T) {
	f := setupTestFixture(t)
	code := f.login(t, defaultLoginRequest())

	_, err := f.tokenService.Token(context.Background(), codeRequest(code))
	require.NoError(t, err)

	_, err = f.tokenService.Token(context.Background(), codeRequest(code))
	oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusBadRequest)
	require.Equal(t, "Invalid authorization code", oauthErr.Description)
}

func TestToken_UnknownCode(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.tokenService.Token(context.Background(), codeRequest("does-not-exist"))
	oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusBadRequest)
	require.ErrorIs(t, oauthErr, errors.ErrInvalidAuthorizationCode)
}

func TestToken_MismatchDoesNotConsumeCode(t *testing.T) {
	f := setupTestFixture(t)
	code := f.login(t, defaultLoginRequest())

	wrongClient := codeRequest(code)
	wrongClient.ClientID = otherClientID
	_, err := f.tokenService.Token(context.Background(), wrongClient)
	oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusBadRequest)
	require.ErrorIs(t, oauthErr, errors.ErrAuthorizationMismatch)

	wrongRedirect := codeRequest(code)
	wrongRedirect.RedirectURI = otherRedirectURI
	_, err = f.tokenService.Token(context.Background(), wrongRedirect)
	requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusBadRequest)

	require.Equal(t, 1, f.codeRepo.Len())

	f.clock.Advance(9 * time.Minute)
	resp, err := f.tokenService.Token(context.Background(), codeRequest(code))
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
}

func TestToken_ExpiredCodeIsRemoved(t *testing.T) {
	f := setupTestFixture(t)
	code := f.login(t, defaultLoginRequest())

	f.clock.Advance(10 * time.Minute)
	_, err := f.tokenService.Token(context.Background(), codeRequest(code))
	require.NoError(t, err, "a code is valid up to and including its expiry instant")

	code = f.login(t, defaultLoginRequest())
	f.clock.Advance(10*time.Minute + time.Second)

	_, err = f.tokenService.Token(context.Background(), codeRequest(code))
	oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusBadRequest)
	require.Equal(t, "Authorization code has expired", oauthErr.Description)
	require.Equal(t, 0, f.codeRepo.Len())

	_, err = f.tokenService.Token(context.Background(), codeRequest(code))
	oauthErr = requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusBadRequest)
	require.Equal(t, "Invalid authorization code", oauthErr.Description)
}

func TestToken_ConcurrentRedemptionSucceedsOnce(t *testing.T) {
	f := setupTestFixture(t)
	code := f.login(t, defaultLoginRequest())

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.tokenService.Token(context.Background(), codeRequest(code)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, 1, f.refreshRepo.Len())
}

func TestToken_RefreshRotation(t *testing.T) {
	f := setupTestFixture(t)
	first := f.exchange(t)

	f.clock.Advance(time.Minute)
	second, err := f.tokenService.Token(context.Background(), refreshRequest(first.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, "Bearer", second.TokenType)
	require.Equal(t, 3600, second.ExpiresIn)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEqual(t, first.AccessToken, second.AccessToken)

	access, err := f.codec.Verify(second.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testUserID, access.UserID)
	require.Equal(t, testUserEmail, access.Email)

	_, err = f.refreshRepo.Get(context.Background(), first.RefreshToken)
	require.ErrorIs(t, err, errors.ErrNotFound)
	require.Equal(t, 1, f.refreshRepo.Len())

	// R1 stays dead even though R2 was never used
	_, err = f.tokenService.Token(context.Background(), refreshRequest(first.RefreshToken))
	oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusUnauthorized)
	require.Equal(t, "Refresh token has been revoked", oauthErr.Description)

	third, err := f.tokenService.Token(context.Background(), refreshRequest(second.RefreshToken))
	require.NoError(t, err)
	require.NotEmpty(t, third.RefreshToken)
}

func TestToken_RefreshFailures(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.tokenService.Token(context.Background(), refreshRequest(""))
		requireOAuthError(t, err, oauth2.ErrorInvalidRequest, http.StatusBadRequest)
	})

	t.Run("unknown string", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.tokenService.Token(context.Background(), refreshRequest("unknown-token"))
		oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusUnauthorized)
		require.Equal(t, "Invalid or expired refresh token", oauthErr.Description)
	})

	t.Run("access token presented", func(t *testing.T) {
		f := setupTestFixture(t)
		pair := f.exchange(t)
		_, err := f.tokenService.Token(context.Background(), refreshRequest(pair.AccessToken))
		oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusUnauthorized)
		require.ErrorIs(t, oauthErr, errors.ErrInvalidTokenType)
	})

	t.Run("validly signed but never stored", func(t *testing.T) {
		f := setupTestFixture(t)
		forged, err := f.codec.Sign(token.Payload{UserID: testUserID, Email: testUserEmail, Type: token.TypeRefresh}, time.Hour)
		require.NoError(t, err)
		_, err = f.tokenService.Token(context.Background(), refreshRequest(forged))
		oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusUnauthorized)
		require.Equal(t, "Refresh token has been revoked", oauthErr.Description)
	})

	t.Run("signed token expired", func(t *testing.T) {
		f := setupTestFixture(t)
		pair := f.exchange(t)
		f.clock.Advance(7*24*time.Hour + time.Second)
		_, err := f.tokenService.Token(context.Background(), refreshRequest(pair.RefreshToken))
		oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusUnauthorized)
		require.ErrorIs(t, oauthErr, errors.ErrTokenExpired)
	})
}

func TestToken_RefreshRecordExpiryIsIndependent(t *testing.T) {
	f := setupTestFixture(t)

	// Signed refresh tokens outlive their records: only the record expiry can fail here.
	ts, err := auth.NewTokenService(auth.TokenRepos{Codes: f.codeRepo, RefreshTokens: f.refreshRepo}, f.codec,
		auth.WithTokenNowTime(f.clock.Now),
		auth.WithTokenExpiry(time.Hour, 30*24*time.Hour),
		auth.WithRefreshRecordExpiry(time.Hour),
	)
	require.NoError(t, err)

	pair, err := ts.Token(context.Background(), codeRequest(f.login(t, defaultLoginRequest())))
	require.NoError(t, err)

	f.clock.Advance(time.Hour + time.Second)
	_, err = ts.Token(context.Background(), refreshRequest(pair.RefreshToken))
	oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidGrant, http.StatusUnauthorized)
	require.Equal(t, "Refresh token has expired", oauthErr.Description)
	require.Equal(t, 0, f.refreshRepo.Len(), "expired record is deleted")
}

func TestToken_ConfiguredAccessExpiry(t *testing.T) {
	f := setupTestFixture(t)

	ts, err := auth.NewTokenService(auth.TokenRepos{Codes: f.codeRepo, RefreshTokens: f.refreshRepo}, f.codec,
		auth.WithTokenNowTime(f.clock.Now),
		auth.WithTokenExpiry(15*time.Minute, 24*time.Hour),
	)
	require.NoError(t, err)

	pair, err := ts.Token(context.Background(), codeRequest(f.login(t, defaultLoginRequest())))
	require.NoError(t, err)
	require.Equal(t, 900, pair.ExpiresIn)

	f.clock.Advance(15*time.Minute + time.Second)
	_, err = f.codec.Verify(pair.AccessToken)
	require.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestToken_ConcurrentRefreshRotatesOnce(t *testing.T) {
	f := setupTestFixture(t)
	pair := f.exchange(t)

	const workers = 16
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.tokenService.Token(context.Background(), refreshRequest(pair.RefreshToken))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, f.refreshRepo.Len())
}

func TestAuthenticate(t *testing.T) {
	f := setupTestFixture(t)
	pair := f.exchange(t)

	payload, err := f.tokenService.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testUserID, payload.UserID)
	require.Equal(t, testUserEmail, payload.Email)

	_, err = f.tokenService.Authenticate("")
	requireOAuthError(t, err, oauth2.ErrorUnauthorized, http.StatusUnauthorized)

	_, err = f.tokenService.Authenticate("garbage")
	requireOAuthError(t, err, oauth2.ErrorInvalidToken, http.StatusUnauthorized)

	_, err = f.tokenService.Authenticate(pair.RefreshToken)
	oauthErr := requireOAuthError(t, err, oauth2.ErrorInvalidToken, http.StatusUnauthorized)
	require.Equal(t, "Invalid token type", oauthErr.Description)

	f.clock.Advance(time.Hour + time.Second)
	_, err = f.tokenService.Authenticate(pair.AccessToken)
	requireOAuthError(t, err, oauth2.ErrorInvalidToken, http.StatusUnauthorized)
}

