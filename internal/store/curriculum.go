package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
)

// CurriculumStore defines the interface for a user's subjects and curriculum items.
type CurriculumStore interface {
	// CreateSubject saves a new subject.
	CreateSubject(ctx context.Context, subject *domain.Subject) error

	// CreateItem saves a new curriculum item. Returns ErrSubjectNotFound when the
	// item's subject (or parent) does not exist.
	CreateItem(ctx context.Context, item *domain.CurriculumItem) error

	// ListSubjects returns the user's subjects ordered by name.
	ListSubjects(ctx context.Context, userID uuid.UUID) ([]domain.Subject, error)

	// ListItems returns every item of every subject of the user.
	ListItems(ctx context.Context, userID uuid.UUID) ([]domain.CurriculumItem, error)

	// GetItem retrieves an item owned by userID.
	// Returns ErrItemNotFound if it does not exist or belongs to another user.
	GetItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.CurriculumItem, error)

	// UpdateItemFlags saves the item's three flags.
	// Returns ErrItemNotFound if the item does not exist.
	UpdateItemFlags(ctx context.Context, item *domain.CurriculumItem) error
}
