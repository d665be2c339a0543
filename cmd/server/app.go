package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studyplan-api/internal/config"
	"github.com/phrazzld/studyplan-api/internal/generation"
	"github.com/phrazzld/studyplan-api/internal/platform/gemini"
	"github.com/phrazzld/studyplan-api/internal/platform/postgres"
	"github.com/phrazzld/studyplan-api/internal/service"
	"github.com/phrazzld/studyplan-api/internal/service/auth"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	jwtService auth.JWTService

	goalService       service.GoalService
	planService       service.PlanService
	taskService       service.TaskService
	statusService     service.StatusService
	curriculumService service.CurriculumService
}

// newApplication builds stores and services on top of db.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	generator, err := newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	deps := service.Deps{
		Transactor: store.NewSQLTransactor(db),
		Goals:      postgres.NewPostgresGoalStore(db, logger),
		Plans:      postgres.NewPostgresPlanStore(db, logger),
		Tasks:      postgres.NewPostgresPlanTaskStore(db, logger),
		Curriculum: postgres.NewPostgresCurriculumStore(db, logger),
		Generator:  generator,
		Planner:    cfg.Planner,
		LLM:        cfg.LLM,
		Logger:     logger,
	}
	return newApplicationWithDeps(cfg, logger, jwtService, deps)
}

// newApplicationWithDeps wires services from already constructed dependencies.
func newApplicationWithDeps(
	cfg *config.Config,
	logger *slog.Logger,
	jwtService auth.JWTService,
	deps service.Deps,
) (*application, error) {
	app := &application{config: cfg, logger: logger, jwtService: jwtService}

	var err error
	if app.goalService, err = service.NewGoalService(deps); err != nil {
		return nil, err
	}
	if app.planService, err = service.NewPlanService(deps); err != nil {
		return nil, err
	}
	if app.taskService, err = service.NewTaskService(deps); err != nil {
		return nil, err
	}
	if app.statusService, err = service.NewStatusService(deps); err != nil {
		return nil, err
	}
	if app.curriculumService, err = service.NewCurriculumService(deps); err != nil {
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

// newGenerator returns the Gemini generator, or generation.Unavailable when no
// API key is configured. Narratives then fall back to the template and
// description plans answer 503.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.TextGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("no Gemini API key configured; text generation disabled")
		return generation.Unavailable{}, nil
	}
	g, err := gemini.NewGeminiGenerator(ctx, logger.With(slog.String("component", "llm_generator")), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", slog.String("model", cfg.ModelName))
	return g, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	return app.serve(ctx, app.setupRouter())
}
