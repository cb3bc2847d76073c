package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/johnwmail/flashclip/internal/config"
	"github.com/johnwmail/flashclip/internal/ident"
	"github.com/johnwmail/flashclip/internal/metrics"
	"github.com/johnwmail/flashclip/internal/services"
	"github.com/johnwmail/flashclip/internal/storage"
)

// App is a configured store with the router serving it. Both the
// long-running server and the Lambda function are built from one.
type App struct {
	Store   storage.Store
	Router  *gin.Engine
	Metrics *metrics.Metrics

	logger *slog.Logger
}

// NewApp opens the configured store and builds the router on top of it
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	ids, err := ident.New(cfg.IDFormat)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.StorageType, err)
	}

	m := metrics.New()
	service := services.NewClipService(store, ids, cfg, logger, services.WithMetrics(m))

	return &App{
		Store:   store,
		Router:  NewRouter(cfg, service, m, logger),
		Metrics: m,
		logger:  logger,
	}, nil
}

// Close purges expired entries when the store supports it, then closes the store
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if cleaner, ok := a.Store.(storage.Cleaner); ok {
		a.logger.Info("Running cleanup...")
		n, err := cleaner.Cleanup(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("cleanup: %w", err))
		} else {
			a.logger.Info("Cleanup complete", "removed", n)
		}
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}
