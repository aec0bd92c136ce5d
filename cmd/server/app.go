package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/memory"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/platform/redis"
	"github.com/phrazzld/taskflow-api/internal/presentation"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	redisClient *goredis.Client

	taskStore store.TaskStore
	formatter *presentation.Formatter
	gateway   auth.Gateway

	dispatcher *events.Dispatcher
	hub        *realtime.Hub
	relay      *redis.Relay

	taskService service.TaskService
}

// newApplication wires every component from cfg. Resources opened before a
// failure are released before returning.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *application, err error) {
	app := &application{
		config: cfg,
		logger: logger,
	}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	switch cfg.Database.Driver {
	case config.DriverMemory:
		app.taskStore = memory.NewTaskStore(logger)
		logger.Warn("Using in-memory task store; tasks are lost on restart")
	default:
		app.db, err = setupAppDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			migrationLog := logger.With(slog.String("component", "migrations"))
			if err = runMigrations(ctx, app.db, migrationLog, "up"); err != nil {
				return nil, err
			}
		}
		app.taskStore = postgres.NewPostgresTaskStore(app.db, logger)
	}

	app.formatter, err = presentation.NewFormatter(cfg.Presentation)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	app.gateway, err = auth.NewGateway(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth gateway: %w", err)
	}

	app.dispatcher = events.NewDispatcher(cfg.Broadcast.QueueSize, logger)
	app.hub = realtime.NewHub(realtime.Config{
		ClientBuffer:   cfg.Broadcast.ClientBuffer,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)
	app.dispatcher.Subscribe(app.hub)

	if cfg.Broadcast.RedisURL != "" {
		app.redisClient, err = redis.Connect(ctx, cfg.Broadcast.RedisURL)
		if err != nil {
			return nil, err
		}
		app.relay = redis.NewRelay(app.redisClient, cfg.Broadcast.RedisChannel, app.hub, logger)
		app.dispatcher.Subscribe(app.relay)
		logger.Info("Redis event relay enabled",
			slog.String("channel", cfg.Broadcast.RedisChannel),
			slog.String("instance_id", app.relay.InstanceID()))
	}

	app.taskService, err = service.NewTaskService(app.taskStore, app.dispatcher, app.formatter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// cleanup releases connections opened by newApplication.
func (app *application) cleanup() {
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing redis connection", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("Application shutdown completed")
}
