package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

const defaultMigrationDir = "internal/platform/postgres/migrations"

// slogGooseLogger routes goose output through slog. Fatalf logs at error
// level instead of exiting so callers keep control of the process.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// handleMigrations runs a goose command against the configured database.
// create writes a new SQL file into dir and needs no database.
func handleMigrations(ctx context.Context, cfg *config.Config, command, name, dir string) error {
	log := slog.Default().With(
		slog.String("component", "migrations"),
		slog.String("command", command),
	)
	if command == "create" {
		if name == "" {
			return errors.New("migration name is required: use -name")
		}
		goose.SetLogger(&slogGooseLogger{logger: log})
		goose.SetBaseFS(nil)
		return goose.Create(nil, dir, name, "sql")
	}

	if cfg.Database.URL == "" {
		return errors.New("database.url is empty: set TASKFLOW_DATABASE_URL")
	}

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close migration connection", slog.String("error", err.Error()))
		}
	}()

	return runMigrations(ctx, db, log, command)
}

// runMigrations applies a goose command using the embedded migration files.
func runMigrations(ctx context.Context, db *sql.DB, log *slog.Logger, command string, args ...string) error {
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}
	return nil
}
