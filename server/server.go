package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-authcode-server/auth"
	"github.com/jrsteele09/go-authcode-server/internal/config"
	"github.com/jrsteele09/go-authcode-server/token"
	"github.com/jrsteele09/go-authcode-server/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	handler     http.HandlerFunc
	routes      []string
	config      config.Config
	repos       auth.Repos
	auth        *auth.AuthorizationService
	tokens      *auth.TokenService
	rateLimiter *RateLimiter
	nowTime     func() time.Time
}

type Option func(*Server)

// WithNowTime sets the clock shared by the services behind the server (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(config config.Config, repos auth.Repos, refreshTokens refresh.Repo, options ...Option) (*Server, error) {
	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		repos:   repos,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	signer, err := token.NewHMACSigner(config.GetSigningSecret())
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to create token signer")
	}
	codec := token.NewJWTCodec(signer, token.WithNowFunc(s.nowTime))

	s.auth, err = auth.NewAuthorizationService(repos,
		auth.WithNowTime(s.nowTime),
		auth.WithCodeTimeout(config.GetAuthCodeTimeout()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to create authorization service")
	}

	s.tokens, err = auth.NewTokenService(auth.TokenRepos{Codes: repos.Codes, RefreshTokens: refreshTokens}, codec,
		auth.WithTokenNowTime(s.nowTime),
		auth.WithTokenExpiry(config.GetAccessTokenExpiry(), config.GetRefreshTokenExpiry()),
		auth.WithRefreshRecordExpiry(config.GetRefreshRecordExpiry()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to create token service")
	}

	if config.GetEnableRateLimiting() {
		s.rateLimiter = NewRateLimiter(config.GetRateLimitRPS(), config.GetRateLimitBurst())
	}

	// Bootstrap: ensure the demo user and frontend client exist
	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, errors.Wrap(err, "[Server New] Failed to initialise the system")
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.GlobalMiddleware()...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
