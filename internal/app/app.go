package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/vk/pipegraph/internal/plugin"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	catalog *plugin.Catalog
	config  *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and plugin
// catalog. Without modules the core modules are registered. A module that
// registers an identifier twice panics.
func NewApp(outW io.Writer, cfg *Config, modules ...plugin.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	catalog := plugin.NewCatalog(modules...)
	logger.Debug("All plugin modules registered.", "modules", len(modules), "plugins", len(catalog.Entries()))

	return &App{
		outW:    outW,
		logger:  logger,
		catalog: catalog,
		config:  cfg,
	}
}

// Catalog returns the application's plugin catalog.
func (a *App) Catalog() *plugin.Catalog {
	return a.catalog
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
