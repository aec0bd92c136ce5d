package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run listens on the configured port and serves until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", app.config.Server.Port, err)
	}
	return app.serve(ctx, ln)
}

// serve runs the HTTP server, the websocket hub, the event dispatcher and the
// optional Redis relay together. When ctx is canceled or any of them fails,
// the HTTP server drains first, then queued events are delivered, then the
// hub closes its clients.
func (app *application) serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second

	g, gctx := errgroup.WithContext(ctx)

	// the hub outlives gctx so events drained during shutdown still reach clients
	hubCtx, stopHub := context.WithCancel(context.WithoutCancel(ctx))
	defer stopHub()

	g.Go(func() error {
		return app.hub.Run(hubCtx)
	})

	app.dispatcher.Start()

	if app.relay != nil {
		g.Go(func() error {
			if err := app.relay.Run(gctx); err != nil {
				return fmt.Errorf("redis relay: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		app.logger.Info("Starting server", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("Shutting down server...")
		defer stopHub()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
		}
		if err := app.dispatcher.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("event dispatcher stop failed: %w", err))
		}
		if dropped := app.dispatcher.Dropped(); dropped > 0 {
			app.logger.Warn("Events dropped during run", slog.Uint64("dropped", dropped))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	app.logger.Info("Server shutdown completed")
	return nil
}
