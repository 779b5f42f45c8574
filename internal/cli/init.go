// Package cli holds the startup steps shared by the api and worker
// binaries.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bilancio/internal/config"
)

// LoadEnvFile loads .env for local development. A missing file is fine;
// deployments set real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// MustLoadConfig loads the environment configuration and exits the
// process when it does not validate.
func MustLoadConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
