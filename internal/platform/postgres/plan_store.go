package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// PostgresPlanStore implements store.PlanStore.
type PostgresPlanStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPlanStore creates a plan store on db. If logger is nil, the default
// logger is used.
func NewPostgresPlanStore(db store.DBTX, logger *slog.Logger) *PostgresPlanStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPlanStore{
		db:     db,
		logger: logger.With(slog.String("component", "plan_store")),
	}
}

var _ store.PlanStore = (*PostgresPlanStore)(nil)

const planColumns = `id, user_id, goal_id, start_date, end_date, status, mode, ai_generated, created_at, updated_at`

// Create implements store.PlanStore.
func (s *PostgresPlanStore) Create(ctx context.Context, plan *domain.StudyPlan) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := plan.Validate(); err != nil {
		log.Warn("plan validation failed during create",
			slog.String("error", err.Error()),
			slog.String("plan_id", plan.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO study_plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		plan.ID,
		plan.UserID,
		plan.GoalID,
		plan.StartDate,
		plan.EndDate,
		plan.Status,
		plan.Mode,
		plan.AIGenerated,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("user already has an active plan",
				slog.String("user_id", plan.UserID.String()))
			return store.ErrActivePlanExists
		}
		log.Error("failed to create plan",
			slog.String("error", err.Error()),
			slog.String("plan_id", plan.ID.String()))
		return store.NewStoreError("study_plan", "create", "failed to insert plan", MapError(err))
	}

	log.Info("study plan created",
		slog.String("plan_id", plan.ID.String()),
		slog.String("user_id", plan.UserID.String()),
		slog.String("mode", string(plan.Mode)))
	return nil
}

// GetByID implements store.PlanStore.
func (s *PostgresPlanStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM study_plans WHERE id = $1`, id)
	return s.scan(ctx, row, "get")
}

// GetActiveForUser implements store.PlanStore.
func (s *PostgresPlanStore) GetActiveForUser(ctx context.Context, userID uuid.UUID) (*domain.StudyPlan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM study_plans WHERE user_id = $1 AND status = 'active'`, userID)
	return s.scan(ctx, row, "get_active")
}

// Update implements store.PlanStore.
func (s *PostgresPlanStore) Update(ctx context.Context, plan *domain.StudyPlan) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := plan.Validate(); err != nil {
		return err
	}
	plan.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE study_plans
		SET goal_id = $2, start_date = $3, end_date = $4, status = $5, mode = $6,
			ai_generated = $7, updated_at = $8
		WHERE id = $1`,
		plan.ID,
		plan.GoalID,
		plan.StartDate,
		plan.EndDate,
		plan.Status,
		plan.Mode,
		plan.AIGenerated,
		plan.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrActivePlanExists
		}
		log.Error("failed to update plan",
			slog.String("error", err.Error()),
			slog.String("plan_id", plan.ID.String()))
		return store.NewStoreError("study_plan", "update", "failed to update plan", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrPlanNotFound)
}

// WithTx implements store.PlanStore.
func (s *PostgresPlanStore) WithTx(tx *sql.Tx) store.PlanStore {
	return &PostgresPlanStore{db: tx, logger: s.logger}
}

func (s *PostgresPlanStore) scan(ctx context.Context, row *sql.Row, op string) (*domain.StudyPlan, error) {
	var (
		plan    domain.StudyPlan
		goalID  uuid.NullUUID
		endDate sql.NullTime
		status  string
		mode    string
	)
	err := row.Scan(
		&plan.ID,
		&plan.UserID,
		&goalID,
		&plan.StartDate,
		&endDate,
		&status,
		&mode,
		&plan.AIGenerated,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPlanNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load plan",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("study_plan", op, "failed to load plan", MapError(err))
	}

	if goalID.Valid {
		id := goalID.UUID
		plan.GoalID = &id
	}
	plan.StartDate = domain.DateOf(plan.StartDate, time.UTC)
	if endDate.Valid {
		d := domain.DateOf(endDate.Time, time.UTC)
		plan.EndDate = &d
	}
	plan.Status = domain.PlanStatus(status)
	plan.Mode = domain.GenerationMode(mode)
	return &plan, nil
}
