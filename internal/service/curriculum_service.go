package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// AddItemRequest describes a new curriculum item. ParentID nil creates a
// learning objective; otherwise a lesson under that objective.
type AddItemRequest struct {
	SubjectID uuid.UUID
	ParentID  *uuid.UUID
	Title     string
	Position  int
}

// CurriculumService manages the learner's subjects and curriculum items.
type CurriculumService interface {
	// Index returns every subject and item of the user.
	Index(ctx context.Context, userID uuid.UUID) (*domain.CurriculumIndex, error)

	// AddSubject creates a subject. Names are unique per user.
	AddSubject(ctx context.Context, userID uuid.UUID, name string) (*domain.Subject, error)

	// AddItem creates an item under one of the user's subjects.
	AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*domain.CurriculumItem, error)

	// SetItemFlags updates the studied/reviewed/solved flags of an item. Flags of
	// parents and children are not touched.
	SetItemFlags(ctx context.Context, userID, itemID uuid.UUID, flags domain.Flags) (*domain.CurriculumItem, error)
}

type curriculumServiceImpl struct {
	deps   Deps
	logger *slog.Logger
}

var _ CurriculumService = (*curriculumServiceImpl)(nil)

// NewCurriculumService creates a CurriculumService. It needs the curriculum store.
func NewCurriculumService(deps Deps) (CurriculumService, error) {
	if err := deps.require("curriculum_service", "curriculum"); err != nil {
		return nil, err
	}
	return &curriculumServiceImpl{
		deps:   deps,
		logger: deps.Logger.With(slog.String("component", "curriculum_service")),
	}, nil
}

// loadIndex reads a user's curriculum snapshot.
func loadIndex(ctx context.Context, cs store.CurriculumStore, userID uuid.UUID) (*domain.CurriculumIndex, error) {
	subjects, err := cs.ListSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := cs.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.CurriculumIndex{Subjects: subjects, Items: items}, nil
}

// Index implements CurriculumService.
func (s *curriculumServiceImpl) Index(ctx context.Context, userID uuid.UUID) (*domain.CurriculumIndex, error) {
	index, err := loadIndex(ctx, s.deps.Curriculum, userID)
	if err != nil {
		return nil, NewServiceError("curriculum_index", "failed to load curriculum", err)
	}
	return index, nil
}

// AddSubject implements CurriculumService.
func (s *curriculumServiceImpl) AddSubject(ctx context.Context, userID uuid.UUID, name string) (*domain.Subject, error) {
	subject, err := domain.NewSubject(userID, name)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Curriculum.CreateSubject(ctx, subject); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateSubject
		}
		return nil, NewServiceError("add_subject", "failed to save subject", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("added subject",
		slog.String("user_id", userID.String()),
		slog.String("subject_id", subject.ID.String()))
	return subject, nil
}

// AddItem implements CurriculumService.
func (s *curriculumServiceImpl) AddItem(
	ctx context.Context,
	userID uuid.UUID,
	req AddItemRequest,
) (*domain.CurriculumItem, error) {
	item, err := domain.NewCurriculumItem(req.SubjectID, req.ParentID, req.Title, req.Position)
	if err != nil {
		return nil, err
	}

	index, err := loadIndex(ctx, s.deps.Curriculum, userID)
	if err != nil {
		return nil, NewServiceError("add_item", "failed to load curriculum", err)
	}
	if index.SubjectName(req.SubjectID) == "" {
		return nil, ErrSubjectNotFound
	}
	if req.ParentID != nil {
		parent, err := s.deps.Curriculum.GetItem(ctx, userID, *req.ParentID)
		if err != nil {
			return nil, NewServiceError("add_item", "failed to load parent item", err)
		}
		if parent.SubjectID != req.SubjectID {
			return nil, domain.NewValidationError("parent_id", "parent item belongs to another subject")
		}
		if !parent.IsObjective() {
			return nil, domain.NewValidationError("parent_id", "lessons can only be added under a learning objective")
		}
	}

	if err := s.deps.Curriculum.CreateItem(ctx, item); err != nil {
		return nil, NewServiceError("add_item", "failed to save item", err)
	}
	return item, nil
}

// SetItemFlags implements CurriculumService.
func (s *curriculumServiceImpl) SetItemFlags(
	ctx context.Context,
	userID, itemID uuid.UUID,
	flags domain.Flags,
) (*domain.CurriculumItem, error) {
	if flags.IsEmpty() {
		return nil, domain.NewValidationError("flags", "at least one flag must be set")
	}

	item, err := s.deps.Curriculum.GetItem(ctx, userID, itemID)
	if err != nil {
		return nil, NewServiceError("set_item_flags", "failed to load item", err)
	}
	flags.Apply(item)
	if err := s.deps.Curriculum.UpdateItemFlags(ctx, item); err != nil {
		return nil, NewServiceError("set_item_flags", "failed to save item", err)
	}
	return item, nil
}
