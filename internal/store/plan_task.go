package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
)

// TaskFilter selects tasks of one plan. Zero fields do not filter.
type TaskFilter struct {
	PlanID   uuid.UUID
	From     *time.Time // inclusive
	To       *time.Time // inclusive
	Statuses []domain.TaskStatus
}

// Matches reports whether task passes the filter. In-memory implementations use
// it; SQL implementations express the same predicate in the query.
func (f TaskFilter) Matches(task *domain.PlanTask) bool {
	if task.PlanID != f.PlanID {
		return false
	}
	if f.From != nil && task.ScheduledDate.Before(domain.DateOf(*f.From, time.UTC)) {
		return false
	}
	if f.To != nil && task.ScheduledDate.After(domain.DateOf(*f.To, time.UTC)) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if task.Status == s {
			return true
		}
	}
	return false
}

// PlanTaskStore defines the interface for plan task persistence.
type PlanTaskStore interface {
	// CreateBatch saves tasks. It must run inside a transaction so that a plan
	// never ends up with half of a generated batch.
	CreateBatch(ctx context.Context, tasks []*domain.PlanTask) error

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanTask, error)

	// Find returns the tasks matching filter ordered by scheduled date, then
	// order index, then creation time. Returns an empty slice when nothing matches.
	Find(ctx context.Context, filter TaskFilter) ([]domain.PlanTask, error)

	// Update saves a task's status, date and completion data.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.PlanTask) error

	// RescheduleOverdue moves every pending task of the plan dated before today to
	// today in a single statement and returns the number of tasks moved. Status,
	// priority and order index are left as they are.
	RescheduleOverdue(ctx context.Context, planID uuid.UUID, today time.Time) (int64, error)

	// DeletePendingFrom removes the plan's pending tasks dated on or after from and
	// returns the number removed. Completed and skipped tasks are never touched.
	DeletePendingFrom(ctx context.Context, planID uuid.UUID, from time.Time) (int64, error)

	// WithTx returns a PlanTaskStore bound to tx.
	WithTx(tx *sql.Tx) PlanTaskStore
}
