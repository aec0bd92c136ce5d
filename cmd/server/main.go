// Package main runs the taskflow API server: task CRUD over HTTP with
// real-time change events pushed to websocket clients.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version, create) and exit")
	migrationName := flag.String("name", "", "name of the migration to create (with -migrate=create)")
	migrationDir := flag.String("dir", defaultMigrationDir, "directory for new migration files (with -migrate=create)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrateCmd != "" {
		if err := handleMigrations(ctx, cfg, *migrateCmd, *migrationName, *migrationDir); err != nil {
			l.Error("Migration failed", slog.String("command", *migrateCmd), slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, l); err != nil {
		l.Error("Server terminated with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run builds the application and serves until ctx is canceled.
func run(ctx context.Context, cfg *config.Config, l *slog.Logger) error {
	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("auth_required", cfg.Auth.Required),
		slog.Bool("redis_relay", cfg.Broadcast.RedisURL != ""))

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.Run(ctx)
}
