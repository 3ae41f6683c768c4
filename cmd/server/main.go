package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-authcode-server/auth"
	fakecoderepo "github.com/jrsteele09/go-authcode-server/auth/codes/repofake"
	fakeclientrepo "github.com/jrsteele09/go-authcode-server/clients/fakerepo"
	"github.com/jrsteele09/go-authcode-server/internal/config"
	"github.com/jrsteele09/go-authcode-server/server"
	"github.com/jrsteele09/go-authcode-server/storage/redisstore"
	"github.com/jrsteele09/go-authcode-server/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-authcode-server/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/go-authcode-server/users/repofake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	c := config.New()
	setupLogging(c)

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	if c.GetSigningSecret() == config.DefaultSigningSecret {
		log.Warn().Msg("JWT_SECRET is not set; using the built-in development signing secret")
	}

	ctx := context.Background()
	repos, refreshTokens, closeStores, err := newStores(ctx, c)
	if err != nil {
		return err
	}
	defer closeStores()

	handler, err := server.New(c, repos, refreshTokens)
	if err != nil {
		return errors.Wrap(err, "server.New")
	}
	defer handler.Close()

	displayAppname(c.GetAppName())
	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() { serverErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serverErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newStores selects in-memory or Redis storage for codes and refresh tokens.
// Users and clients are always the in-memory registries seeded at startup.
func newStores(ctx context.Context, c config.Config) (auth.Repos, refresh.Repo, func(), error) {
	repos := auth.Repos{
		Users:   fakeuserrepo.NewFakeUserRepo(),
		Clients: fakeclientrepo.NewFakeClientRepo(),
	}

	switch c.GetStorage() {
	case config.StorageRedis:
		client, err := redisstore.NewClient(ctx, c)
		if err != nil {
			return auth.Repos{}, nil, nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using Redis storage")
		repos.Codes = redisstore.NewCodeStore(client, c.GetRedisKeyPrefix())
		return repos, redisstore.NewRefreshTokenStore(client, c.GetRedisKeyPrefix()), func() { _ = client.Close() }, nil
	case config.StorageMemory:
		log.Info().Msg("Using in-memory storage")
		repos.Codes = fakecoderepo.NewFakeCodeRepo()
		return repos, refreshrepofake.NewFakeRefreshTokenRepo(), func() {}, nil
	default:
		return auth.Repos{}, nil, nil, errors.Errorf("unknown STORAGE %q", c.GetStorage())
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server.ListenAndServe")
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
