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

// serve listens on the configured port until ctx is canceled, then shuts the
// server down within the configured timeout.
func (app *application) serve(ctx context.Context, handler http.Handler) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return app.serveListener(ctx, ln, handler)
}

func (app *application) serveListener(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	shutdownTimeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.logger.Info("starting server", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		// The parent context is already done; shutdown needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		app.logger.Info("server shutdown completed")
		return nil
	})
	return g.Wait()
}
