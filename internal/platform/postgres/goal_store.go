package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// PostgresGoalStore implements store.GoalStore.
type PostgresGoalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGoalStore creates a goal store on db, which may be a pool or a
// transaction. If logger is nil, the default logger is used.
func NewPostgresGoalStore(db store.DBTX, logger *slog.Logger) *PostgresGoalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGoalStore{
		db:     db,
		logger: logger.With(slog.String("component", "goal_store")),
	}
}

var _ store.GoalStore = (*PostgresGoalStore)(nil)

const goalColumns = `id, user_id, title, deadline, hours_per_day, subject_ids, active, created_at, updated_at`

// Create implements store.GoalStore.
func (s *PostgresGoalStore) Create(ctx context.Context, goal *domain.Goal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := goal.Validate(); err != nil {
		log.Warn("goal validation failed during create",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return err
	}

	subjects, err := json.Marshal(goal.SubjectIDs)
	if err != nil {
		return fmt.Errorf("failed to encode subject ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Deadline,
		goal.HoursPerDay,
		string(subjects),
		goal.Active,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()),
			slog.String("user_id", goal.UserID.String()))
		return store.NewStoreError("goal", "create", "failed to insert goal", MapError(err))
	}

	log.Debug("goal created",
		slog.String("goal_id", goal.ID.String()),
		slog.String("user_id", goal.UserID.String()))
	return nil
}

// GetByID implements store.GoalStore.
func (s *PostgresGoalStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id)
	return s.scan(ctx, row, "get")
}

// GetActive implements store.GoalStore.
func (s *PostgresGoalStore) GetActive(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1 AND active`, userID)
	return s.scan(ctx, row, "get_active")
}

// DeactivateAllForUser implements store.GoalStore.
func (s *PostgresGoalStore) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE goals SET active = FALSE, updated_at = $2 WHERE user_id = $1 AND active`,
		userID, time.Now().UTC())
	if err != nil {
		log.Error("failed to deactivate goals",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return store.NewStoreError("goal", "deactivate", "failed to deactivate goals", MapError(err))
	}

	if n, err := result.RowsAffected(); err == nil {
		log.Debug("goals deactivated",
			slog.String("user_id", userID.String()),
			slog.Int64("count", n))
	}
	return nil
}

// WithTx implements store.GoalStore.
func (s *PostgresGoalStore) WithTx(tx *sql.Tx) store.GoalStore {
	return &PostgresGoalStore{db: tx, logger: s.logger}
}

func (s *PostgresGoalStore) scan(ctx context.Context, row *sql.Row, op string) (*domain.Goal, error) {
	var (
		goal     domain.Goal
		deadline sql.NullTime
		subjects []byte
	)
	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&deadline,
		&goal.HoursPerDay,
		&subjects,
		&goal.Active,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGoalNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load goal",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("goal", op, "failed to load goal", MapError(err))
	}

	if deadline.Valid {
		d := domain.DateOf(deadline.Time, time.UTC)
		goal.Deadline = &d
	}
	goal.SubjectIDs = []uuid.UUID{}
	if len(subjects) > 0 {
		if err := json.Unmarshal(subjects, &goal.SubjectIDs); err != nil {
			return nil, store.NewStoreError("goal", op, "invalid subject ids", err)
		}
	}
	return &goal, nil
}
