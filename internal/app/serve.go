package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vk/pipegraph/internal/configstore"
	"github.com/vk/pipegraph/internal/eventloop"
	"github.com/vk/pipegraph/internal/httpapi"
	"github.com/vk/pipegraph/internal/interaction"
	"github.com/vk/pipegraph/internal/session"
)

// Serve runs the HTTP editor until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.Serve started.")

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	obs, closeObs := a.observers(ctx)
	defer closeObs()

	loop := eventloop.New()
	sess := session.New(ctx, session.Config{
		Loop:     loop,
		Catalog:  a.catalog,
		Size:     interaction.Size{W: a.config.Width, H: a.config.Height},
		Store:    store,
		Observer: obs,
		Logger:   a.logger,
	})
	server := httpapi.New(loop, sess, a.logger)

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go func() { _ = loop.Run(loopCtx) }()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🩺 Editor server starting", "address", a.config.Addr)
		errCh <- server.Listen(a.config.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("editor server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down editor server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		a.logger.Error("Editor server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Editor server shut down gracefully.")
	return nil
}

// openStore picks the configuration store: PostgreSQL when a database URL
// is set, a directory when a store dir is set, nothing otherwise.
func (a *App) openStore(ctx context.Context) (configstore.Store, func(), error) {
	switch {
	case a.config.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, a.config.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		store := configstore.NewPGStore(pool)
		if err := store.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to create schema: %w", err)
		}
		a.logger.Info("Using PostgreSQL configuration store.")
		return store, pool.Close, nil
	case a.config.StoreDir != "":
		a.logger.Info("Using directory configuration store.", "dir", a.config.StoreDir)
		return configstore.NewFSStore(a.config.StoreDir), func() {}, nil
	}
	a.logger.Warn("No configuration store configured: save and load are disabled.")
	return nil, func() {}, nil
}
