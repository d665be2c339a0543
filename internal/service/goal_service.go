package service

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

// SaveGoalRequest holds the fields of a new goal.
type SaveGoalRequest struct {
	Title       string
	Deadline    *time.Time
	HoursPerDay float64
	// SubjectIDs limits the goal to these subjects; empty means every subject.
	SubjectIDs []uuid.UUID
}

// GoalService manages the learner's active goal.
type GoalService interface {
	// SaveGoal validates req and makes it the user's only active goal.
	SaveGoal(ctx context.Context, userID uuid.UUID, req SaveGoalRequest) (*domain.Goal, error)

	// GetActiveGoal returns the user's active goal or ErrNoActiveGoal.
	GetActiveGoal(ctx context.Context, userID uuid.UUID) (*domain.Goal, error)
}

type goalServiceImpl struct {
	deps   Deps
	logger *slog.Logger
}

var _ GoalService = (*goalServiceImpl)(nil)

// NewGoalService creates a GoalService. It needs the transactor and the goal and
// curriculum stores.
func NewGoalService(deps Deps) (GoalService, error) {
	if err := deps.require("goal_service", "transactor", "goals", "curriculum"); err != nil {
		return nil, err
	}
	return &goalServiceImpl{
		deps:   deps,
		logger: deps.Logger.With(slog.String("component", "goal_service")),
	}, nil
}

// SaveGoal implements GoalService.
func (s *goalServiceImpl) SaveGoal(
	ctx context.Context,
	userID uuid.UUID,
	req SaveGoalRequest,
) (*domain.Goal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	goal, err := domain.NewGoal(userID, req.Title, req.Deadline, req.HoursPerDay, req.SubjectIDs, s.deps.today())
	if err != nil {
		return nil, err
	}
	if err := s.checkSubjects(ctx, userID, goal.SubjectIDs); err != nil {
		return nil, err
	}

	err = s.deps.Transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		goals := s.deps.Goals.WithTx(tx)
		if err := goals.DeactivateAllForUser(ctx, userID); err != nil {
			return err
		}
		return goals.Create(ctx, goal)
	})
	if err != nil {
		log.Error("failed to save goal", slog.String("error", err.Error()))
		return nil, NewServiceError("save_goal", "failed to save goal", err)
	}

	log.Info("saved active goal", slog.String("goal_id", goal.ID.String()))
	return goal, nil
}

// checkSubjects rejects subject IDs the user does not own.
func (s *goalServiceImpl) checkSubjects(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	subjects, err := s.deps.Curriculum.ListSubjects(ctx, userID)
	if err != nil {
		return NewServiceError("save_goal", "failed to load subjects", err)
	}
	known := make(map[uuid.UUID]bool, len(subjects))
	for _, sub := range subjects {
		known[sub.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return domain.NewValidationError("subject_ids", "unknown subject "+id.String())
		}
	}
	return nil
}

// GetActiveGoal implements GoalService.
func (s *goalServiceImpl) GetActiveGoal(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	goal, err := s.deps.Goals.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActiveGoal
		}
		return nil, NewServiceError("get_active_goal", "failed to load goal", err)
	}
	return goal, nil
}
