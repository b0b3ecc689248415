package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LogFormat string
	LogLevel  string

	// Editor server.
	Addr   string
	Width  float64
	Height float64

	// Configuration storage. DatabaseURL wins over StoreDir.
	StoreDir    string
	DatabaseURL string

	// ProgressURL, when set, receives run progress over socket.io.
	ProgressURL       string
	ProgressNamespace string
	ProgressTimeout   time.Duration
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, errors.New("canvas width and height must be positive")
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Width == 0 {
		cfg.Width = 1200
	}
	if cfg.Height == 0 {
		cfg.Height = 800
	}
	if cfg.ProgressNamespace == "" {
		cfg.ProgressNamespace = "/"
	}
	if cfg.ProgressTimeout == 0 {
		cfg.ProgressTimeout = 10 * time.Second
	}
	return &cfg, nil
}
