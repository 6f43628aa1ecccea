package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/auth"
	"github.com/kolejker/OsaltServer/internal/config"
	"github.com/kolejker/OsaltServer/internal/core"
	"github.com/kolejker/OsaltServer/internal/store"
	"github.com/kolejker/OsaltServer/internal/store/sqlite"
	transporthttp "github.com/kolejker/OsaltServer/internal/transport/http"
)

// startupUserListing caps how many registered users are logged at boot.
const startupUserListing = 5

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	engine          *core.Engine
	auth            *auth.Service
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	engine, err := core.NewEngine(core.Options{
		Channel:         cfg.Channel(),
		BroadcastMode:   core.BroadcastMode(cfg.BroadcastMode),
		MaxPendingBytes: cfg.MaxPendingBytes,
	}, core.StaticProfiles{Value: cfg.Profile}, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("init engine: %w", err)
	}

	tokens := &auth.TokenConfig{
		Secret: []byte(cfg.TokenSecret),
		Issuer: cfg.TokenIssuer,
	}
	authService := auth.NewService(st, engine, tokens, auth.LoginOptions{
		ProtocolVersion: cfg.ProtocolVersion,
		Permissions:     cfg.LoginPermissions,
		MOTD:            cfg.MOTD,
	}, logger)

	server := transporthttp.NewServer(engine, authService, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		engine:          engine,
		auth:            authService,
		store:           st,
		log:             logger,
	}, nil
}

// Auth exposes the authentication service for offline commands.
func (a *App) Auth() *auth.Service {
	return a.auth
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	a.logUsers(ctx)

	serverErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("bancho server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.Close()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Int("sessions", a.engine.Registry().Len()).Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.Close()
			return err
		}

		a.Close()
		return <-serverErr
	}
}

// logUsers prints a short summary of the user directory.
func (a *App) logUsers(ctx context.Context) {
	users, err := a.auth.Users(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to list users")
		return
	}
	if len(users) == 0 {
		a.log.Info().Msg("no users registered")
		return
	}

	a.log.Info().Int("count", len(users)).Msg("registered users")
	for i, u := range users {
		if i == startupUserListing {
			a.log.Info().Int("more", len(users)-startupUserListing).Msg("more users not listed")
			break
		}
		a.log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user")
	}
}

// Close closes database and other resources.
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
