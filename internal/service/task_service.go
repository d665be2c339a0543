package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// TaskRange filters ListTasks. Nil bounds are open.
type TaskRange struct {
	From     *time.Time
	To       *time.Time
	Statuses []domain.TaskStatus
}

// TaskService changes the state of individual plan tasks.
type TaskService interface {
	// RescheduleOverdue moves every pending task dated before today to today and
	// returns how many moved. Running it twice in a row moves nothing the second time.
	RescheduleOverdue(ctx context.Context, userID, planID uuid.UUID) (int64, error)

	// CompleteTask marks a pending task done. actualMinutes nil records the
	// scheduled duration.
	CompleteTask(ctx context.Context, userID, taskID uuid.UUID, actualMinutes *int) (*domain.PlanTask, error)

	// ResetTask returns a completed task to pending.
	ResetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.PlanTask, error)

	// SkipTask marks a pending task skipped. Skipped tasks cannot change again.
	SkipTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.PlanTask, error)

	// RescheduleTask moves a pending task to date.
	RescheduleTask(ctx context.Context, userID, taskID uuid.UUID, date time.Time) (*domain.PlanTask, error)

	// ListTasks returns a plan's tasks ordered by date and order index.
	ListTasks(ctx context.Context, userID, planID uuid.UUID, r TaskRange) ([]domain.PlanTask, error)
}

type taskServiceImpl struct {
	deps   Deps
	logger *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService. It needs the plan and task stores.
func NewTaskService(deps Deps) (TaskService, error) {
	if err := deps.require("task_service", "plans", "tasks"); err != nil {
		return nil, err
	}
	return &taskServiceImpl{
		deps:   deps,
		logger: deps.Logger.With(slog.String("component", "task_service")),
	}, nil
}

// RescheduleOverdue implements TaskService.
func (s *taskServiceImpl) RescheduleOverdue(ctx context.Context, userID, planID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("plan_id", planID.String()))

	plan, err := ownedPlan(ctx, s.deps.Plans, userID, planID)
	if err != nil {
		return 0, NewServiceError("reschedule_overdue", "failed to load plan", err)
	}
	if !plan.IsActive() {
		return 0, ErrPlanNotActive
	}

	today := s.deps.today()
	moved, err := s.deps.Tasks.RescheduleOverdue(ctx, plan.ID, today)
	if err != nil {
		log.Error("failed to reschedule overdue tasks", slog.String("error", err.Error()))
		return 0, NewServiceError("reschedule_overdue", "failed to reschedule tasks", err)
	}

	log.Info("rescheduled overdue tasks",
		slog.Int64("moved", moved),
		slog.Time("today", today))
	return moved, nil
}

// CompleteTask implements TaskService.
func (s *taskServiceImpl) CompleteTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	actualMinutes *int,
) (*domain.PlanTask, error) {
	now := s.deps.Clock()
	return s.mutate(ctx, "complete_task", userID, taskID, func(t *domain.PlanTask, _ *domain.StudyPlan) error {
		return t.Complete(now, actualMinutes)
	})
}

// ResetTask implements TaskService.
func (s *taskServiceImpl) ResetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.PlanTask, error) {
	return s.mutate(ctx, "reset_task", userID, taskID, func(t *domain.PlanTask, _ *domain.StudyPlan) error {
		return t.Reset()
	})
}

// SkipTask implements TaskService.
func (s *taskServiceImpl) SkipTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.PlanTask, error) {
	return s.mutate(ctx, "skip_task", userID, taskID, func(t *domain.PlanTask, _ *domain.StudyPlan) error {
		return t.Skip()
	})
}

// RescheduleTask implements TaskService.
func (s *taskServiceImpl) RescheduleTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	date time.Time,
) (*domain.PlanTask, error) {
	target := domain.DateOf(date, time.UTC)
	today := s.deps.today()
	return s.mutate(ctx, "reschedule_task", userID, taskID, func(t *domain.PlanTask, plan *domain.StudyPlan) error {
		if target.Before(plan.StartDate) {
			return domain.NewValidationError("date", "task date cannot be before the plan starts")
		}
		if target.Before(today) {
			return domain.NewValidationError("date", "task date cannot be in the past")
		}
		return t.Reschedule(target)
	})
}

// mutate loads a task and its plan, checks ownership, applies fn and saves the task.
func (s *taskServiceImpl) mutate(
	ctx context.Context,
	op string,
	userID, taskID uuid.UUID,
	fn func(*domain.PlanTask, *domain.StudyPlan) error,
) (*domain.PlanTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("operation", op),
		slog.String("task_id", taskID.String()))

	task, err := s.deps.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError(op, "failed to load task", err)
	}
	plan, err := ownedPlan(ctx, s.deps.Plans, userID, task.PlanID)
	if err != nil {
		if errors.Is(err, ErrNotOwned) {
			log.Warn("task belongs to another user", slog.String("user_id", userID.String()))
		}
		return nil, NewServiceError(op, "failed to load plan", err)
	}

	if err := fn(task, plan); err != nil {
		return nil, err
	}
	if err := s.deps.Tasks.Update(ctx, task); err != nil {
		log.Error("failed to save task", slog.String("error", err.Error()))
		return nil, NewServiceError(op, "failed to save task", err)
	}

	log.Debug("task updated", slog.String("status", string(task.Status)))
	return task, nil
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	userID, planID uuid.UUID,
	r TaskRange,
) ([]domain.PlanTask, error) {
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return nil, domain.NewValidationError("to", "range end cannot be before its start")
	}
	for _, st := range r.Statuses {
		if !domain.IsValidTaskStatus(st) {
			return nil, domain.NewValidationError("status", "invalid task status "+string(st))
		}
	}

	plan, err := ownedPlan(ctx, s.deps.Plans, userID, planID)
	if err != nil {
		return nil, NewServiceError("list_tasks", "failed to load plan", err)
	}
	tasks, err := s.deps.Tasks.Find(ctx, store.TaskFilter{
		PlanID:   plan.ID,
		From:     r.From,
		To:       r.To,
		Statuses: r.Statuses,
	})
	if err != nil {
		return nil, NewServiceError("list_tasks", "failed to load tasks", err)
	}
	return tasks, nil
}
