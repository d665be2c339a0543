package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
)

// PlanStore defines the interface for study plan persistence.
type PlanStore interface {
	// Create saves a new plan. Returns ErrActivePlanExists when the plan is active
	// and the user already has an active plan.
	Create(ctx context.Context, plan *domain.StudyPlan) error

	// GetByID retrieves a plan by its ID.
	// Returns ErrPlanNotFound if the plan does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyPlan, error)

	// GetActiveForUser retrieves the user's active plan.
	// Returns ErrPlanNotFound if the user has none.
	GetActiveForUser(ctx context.Context, userID uuid.UUID) (*domain.StudyPlan, error)

	// Update saves the plan's status, end date and goal.
	// Returns ErrPlanNotFound if the plan does not exist.
	Update(ctx context.Context, plan *domain.StudyPlan) error

	// WithTx returns a PlanStore bound to tx.
	WithTx(tx *sql.Tx) PlanStore
}
