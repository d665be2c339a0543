// Package main runs the study plan API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/studyplan-api/internal/config"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/platform/postgres"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply pending database migrations and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateOnly); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration, prepares the database and serves until ctx ends.
func run(ctx context.Context, migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Planner.Timezone),
		slog.Bool("llm_configured", cfg.LLM.GeminiAPIKey != ""))

	db, err := postgres.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if err := postgres.Migrate(ctx, db, log); err != nil {
		return err
	}
	if migrateOnly {
		return nil
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
