package server

import (
	"context"
	"slices"

	"github.com/jrsteele09/go-authcode-server/clients"
	autherrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DemoUserEmail    = "demo@example.com"
	DemoUserPassword = "password123"
	DemoClientID     = "frontend-app"
	DemoClientName   = "Frontend Application"
)

var demoRedirectURIs = []string{
	"http://localhost:5173/callback",
	"http://localhost:5174/callback",
	"http://localhost:5175/callback",
	"http://localhost:3000/callback",
}

// InitialiseSystem seeds the demo user and the frontend client when they are absent.
func (s *Server) InitialiseSystem(_ context.Context) error {
	userCreated, err := s.createDemoUser()
	if err != nil {
		return errors.Wrap(err, "[Server InitialiseSystem] failed to bootstrap demo user")
	}

	client, err := s.createDemoClient()
	if err != nil {
		return errors.Wrap(err, "[Server InitialiseSystem] failed to bootstrap demo client")
	}

	if userCreated {
		log.Info().Msg("Demo user created")
		log.Info().Msgf("   Email:        %s", DemoUserEmail)
		log.Info().Msgf("   Client ID:    %s (%s)", client.ID, client.Name)
		for _, uri := range client.RedirectURIs {
			log.Info().Msgf("   Redirect URI: %s", uri)
		}
	}
	return nil
}

func (s *Server) createDemoUser() (created bool, err error) {
	existing, err := s.repos.Users.GetByEmail(DemoUserEmail)
	if err == nil && existing != nil {
		return false, nil
	}
	if err != nil && !autherrors.Is(err, autherrors.ErrNotFound) {
		return false, errors.Wrap(err, "[server createDemoUser] GetByEmail")
	}

	passwordHash, err := users.HashPassword(DemoUserPassword)
	if err != nil {
		return false, errors.Wrap(err, "[server createDemoUser] failed to hash password")
	}

	if err := s.repos.Users.Upsert(&users.User{
		Email:        DemoUserEmail,
		PasswordHash: passwordHash,
		CreatedAt:    s.nowTime(),
	}); err != nil {
		return false, errors.Wrap(err, "[server createDemoUser] failed to create demo user")
	}
	return true, nil
}

func (s *Server) createDemoClient() (*clients.Client, error) {
	existing, err := s.repos.Clients.Get(DemoClientID)
	if err == nil && existing != nil {
		return existing, nil
	}
	if err != nil && !autherrors.Is(err, autherrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[server createDemoClient] Get")
	}

	client := &clients.Client{
		ID:           DemoClientID,
		Name:         DemoClientName,
		RedirectURIs: s.demoRedirectURIs(),
	}
	if err := s.repos.Clients.Upsert(client); err != nil {
		return nil, errors.Wrap(err, "[server createDemoClient] failed to create demo client")
	}
	return client, nil
}

// demoRedirectURIs is the local development callbacks plus the configured frontend callback.
func (s *Server) demoRedirectURIs() []string {
	uris := slices.Clone(demoRedirectURIs)
	if frontendURL := s.config.GetFrontendURL(); frontendURL != "" {
		if callback := frontendURL + "/callback"; !slices.Contains(uris, callback) {
			uris = append(uris, callback)
		}
	}
	return uris
}
