package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/go-authcode-server/auth"
	fakecoderepo "github.com/jrsteele09/go-authcode-server/auth/codes/repofake"
	fakeclientrepo "github.com/jrsteele09/go-authcode-server/clients/fakerepo"
	"github.com/jrsteele09/go-authcode-server/internal/config"
	"github.com/jrsteele09/go-authcode-server/server"
	"github.com/jrsteele09/go-authcode-server/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-authcode-server/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/go-authcode-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	demoEmail       = "demo@example.com"
	demoPassword    = "password123"
	demoClientID    = "frontend-app"
	demoRedirectURI = "http://localhost:5173/callback"
	allowedOrigin   = "http://localhost:5173"
)

// testConfig overrides the environment driven config where tests need fixed values.
type testConfig struct {
	config.Config
	rateLimitRPS   int
	rateLimitBurst int
}

func (c testConfig) GetEnv() string { return "TEST" }
func (c testConfig) GetSigningSecret() string { return "test-secret" }
func (c testConfig) GetEnableRateLimiting() bool { return c.rateLimitRPS > 0 }
func (c testConfig) GetRateLimitRPS() int { return c.rateLimitRPS }
func (c testConfig) GetRateLimitBurst() int { return c.rateLimitBurst }
func (c testConfig) GetFrontendURL() string { return "" }
func (c testConfig) GetAllowedOrigins() config.AllowedOrigins {
	return config.AllowedOrigins{allowedOrigin: {}}
}

type testFixture struct {
	repos       auth.Repos
	refreshRepo refresh.Repo
	server      *server.Server
	httpServer  *httptest.Server
}

func setupTestFixture(t *testing.T, cfg testConfig) *testFixture {
	t.Helper()

	repos := auth.Repos{
		Users:   fakeuserrepo.NewFakeUserRepo(),
		Clients: fakeclientrepo.NewFakeClientRepo(),
		Codes:   fakecoderepo.NewFakeCodeRepo(),
	}
	refreshRepo := refreshrepofake.NewFakeRefreshTokenRepo()
	return newFixture(t, cfg, repos, refreshRepo)
}

func newFixture(t *testing.T, cfg testConfig, repos auth.Repos, refreshRepo refresh.Repo) *testFixture {
	t.Helper()

	if cfg.Config == nil {
		cfg.Config = config.New()
	}
	srv, err := server.New(cfg, repos, refreshRepo)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	httpServer := httptest.NewServer(srv)
	t.Cleanup(httpServer.Close)

	return &testFixture{
		repos:       repos,
		refreshRepo: refreshRepo,
		server:      srv,
		httpServer:  httpServer,
	}
}

func (f *testFixture) postJSON(t *testing.T, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(f.httpServer.URL+path, "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err)
	return resp, decodeResponse(t, resp)
}

func (f *testFixture) postForm(t *testing.T, path string, form url.Values) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.PostForm(f.httpServer.URL+path, form)
	require.NoError(t, err)
	return resp, decodeResponse(t, resp)
}

func (f *testFixture) get(t *testing.T, path, accessToken string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, f.httpServer.URL+path, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp, decodeResponse(t, resp)
}

func decodeResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	body := map[string]any{}
	if resp.ContentLength == 0 {
		return body
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func demoLogin() map[string]string {
	return map[string]string{
		"email":        demoEmail,
		"password":     demoPassword,
		"client_id":    demoClientID,
		"redirect_uri": demoRedirectURI,
	}
}

// login performs the demo login and returns the issued code
func (f *testFixture) login(t *testing.T) string {
	t.Helper()

	resp, body := f.postJSON(t, "/login", demoLogin())
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	redirect, err := url.Parse(body["redirect_url"].(string))
	require.NoError(t, err)
	code := redirect.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

// exchange logs in and redeems the code, returning the token response
func (f *testFixture) exchange(t *testing.T) map[string]any {
	t.Helper()

	resp, body := f.postJSON(t, "/token", map[string]string{
		"grant_type":   "authorization_code",
		"code":         f.login(t),
		"redirect_uri": demoRedirectURI,
		"client_id":    demoClientID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	return body
}
