// Command server runs the Bonvan dashboard API.
//
// Configuration is read by internal/config: an optional YAML file named by
// CONFIG_PATH, overridden by BONVAN_* environment variables.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/config"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/sl"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", sl.Err(err))
		os.Exit(1)
	}

	logger := setupLogger(cfg.Env)

	if cfg.Auth.JWTSecret == "" {
		// Only the local env gets here; sessions do not survive a restart.
		cfg.Auth.JWTSecret = randomSecret()
		logger.Warn("BONVAN_JWT_SECRET not set, using a random secret for this run")
	}

	if cfg.Storage.Driver == config.DriverSQLite {
		dir := filepath.Dir(cfg.Storage.SQLitePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory", slog.String("dir", dir), sl.Err(err))
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := server.OpenStore(ctx, cfg.Storage)
	cancel()
	if err != nil {
		logger.Error("failed to open store", slog.String("driver", cfg.Storage.Driver), sl.Err(err))
		os.Exit(1)
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		store.Close()
		logger.Error("failed to create server", sl.Err(err))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", sl.Err(err))
		os.Exit(1)
	}
}

// setupLogger logs text in the local env and JSON elsewhere.
func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	// crypto/rand.Read never returns an error.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
