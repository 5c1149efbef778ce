package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nuxflare/durable-websockets/internal/config"
	"github.com/nuxflare/durable-websockets/internal/relay"
	"github.com/nuxflare/durable-websockets/internal/store"
	"github.com/nuxflare/durable-websockets/internal/store/sqlite"
	transporthttp "github.com/nuxflare/durable-websockets/internal/transport/http"
)

// App wires together relay and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	names           store.NameStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	names, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init name store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("name store initialized")

	registry := relay.NewRegistry(names, logger)
	server := transporthttp.NewServer(registry, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		names:           names,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the name store and other resources.
func (a *App) cleanup() {
	if a.names != nil {
		if err := a.names.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close name store")
		} else {
			a.log.Info().Msg("name store closed")
		}
	}
}
