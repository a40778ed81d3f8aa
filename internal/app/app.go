package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/scrummate/scrummate/config"
	"github.com/scrummate/scrummate/internal/gateway"
	"github.com/scrummate/scrummate/internal/handler"
	"github.com/scrummate/scrummate/internal/module"
	"github.com/scrummate/scrummate/internal/repository"
	"github.com/scrummate/scrummate/internal/storage"
	"github.com/scrummate/scrummate/internal/storage/inmemory"
	"github.com/scrummate/scrummate/internal/storage/keyvalue"
	"github.com/scrummate/scrummate/pkg/local"
	"github.com/scrummate/scrummate/pkg/log"
)

// openStore dials the configured Redis endpoint. An empty endpoint selects
// the in-memory store, so the app runs without a backend; its records then
// live only as long as the process.
func openStore(ctx context.Context, cfg config.Redis, logger zerolog.Logger) (storage.DocumentStore, error) {
	if cfg.Endpoint == "" {
		logger.Warn().Msg("no redis endpoint configured, using the in-memory store")
		return inmemory.New(), nil
	}
	rdb := redis.NewClient(
		&redis.Options{
			Addr: cfg.Endpoint,
		},
	)
	return keyvalue.Open(ctx, rdb)
}

func Run(cfg *config.Config) error {
	logger := log.New(cfg.Log)
	language := local.Parse(cfg.Language)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	repo := repository.New(store, logger)
	gw := gateway.New(cfg.OpenAI, language, logger)

	modules, err := module.BuildAll(
		ctx, module.Deps{
			Repo:      repo,
			Responder: gw,
			Language:  language,
			Logger:    logger,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to build modules: %w", err)
	}
	defer func() {
		for _, mod := range modules {
			mod.Window.Close()
		}
	}()

	h := handler.New(modules, repo, logger)
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: h.Router(),
	}

	serveErr := make(chan error, 1)
	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			logger.Info().Str("address", cfg.HTTP.Address).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		},
	)

	select {
	case err := <-serveErr:
		wg.Wait()
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down server")
	}
	wg.Wait()
	return nil
}
