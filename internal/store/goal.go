package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
)

// GoalStore defines the interface for goal persistence.
type GoalStore interface {
	// Create saves a new goal. Returns validation errors if the goal is invalid.
	Create(ctx context.Context, goal *domain.Goal) error

	// GetByID retrieves a goal by its ID.
	// Returns ErrGoalNotFound if the goal does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error)

	// GetActive retrieves the user's active goal.
	// Returns ErrGoalNotFound if the user has none.
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.Goal, error)

	// DeactivateAllForUser marks every goal of the user inactive.
	DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a GoalStore bound to tx.
	WithTx(tx *sql.Tx) GoalStore
}
