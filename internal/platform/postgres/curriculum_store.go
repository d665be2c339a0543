package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// PostgresCurriculumStore implements store.CurriculumStore.
type PostgresCurriculumStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCurriculumStore creates a curriculum store on db. If logger is nil,
// the default logger is used.
func NewPostgresCurriculumStore(db store.DBTX, logger *slog.Logger) *PostgresCurriculumStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCurriculumStore{
		db:     db,
		logger: logger.With(slog.String("component", "curriculum_store")),
	}
}

var _ store.CurriculumStore = (*PostgresCurriculumStore)(nil)

const itemColumns = `i.id, i.subject_id, i.parent_id, i.title, i.position, i.studied, i.reviewed, i.solved`

// CreateSubject implements store.CurriculumStore.
func (s *PostgresCurriculumStore) CreateSubject(ctx context.Context, subject *domain.Subject) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subjects (id, user_id, name) VALUES ($1, $2, $3)`,
		subject.ID, subject.UserID, subject.Name)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create subject",
			slog.String("error", err.Error()),
			slog.String("user_id", subject.UserID.String()))
		return store.NewStoreError("subject", "create", "failed to insert subject", MapError(err))
	}
	return nil
}

// CreateItem implements store.CurriculumStore.
func (s *PostgresCurriculumStore) CreateItem(ctx context.Context, item *domain.CurriculumItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO curriculum_items (id, subject_id, parent_id, title, position, studied, reviewed, solved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.SubjectID, item.ParentID, item.Title, item.Position,
		item.Studied, item.Reviewed, item.Solved)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrSubjectNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create curriculum item",
			slog.String("error", err.Error()),
			slog.String("subject_id", item.SubjectID.String()))
		return store.NewStoreError("curriculum_item", "create", "failed to insert item", MapError(err))
	}
	return nil
}

// ListSubjects implements store.CurriculumStore.
func (s *PostgresCurriculumStore) ListSubjects(ctx context.Context, userID uuid.UUID) ([]domain.Subject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name FROM subjects WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, store.NewStoreError("subject", "list", "failed to query subjects", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	subjects := []domain.Subject{}
	for rows.Next() {
		var sub domain.Subject
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Name); err != nil {
			return nil, store.NewStoreError("subject", "list", "failed to scan subject", err)
		}
		subjects = append(subjects, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("subject", "list", "failed to iterate subjects", err)
	}
	return subjects, nil
}

// ListItems implements store.CurriculumStore.
func (s *PostgresCurriculumStore) ListItems(ctx context.Context, userID uuid.UUID) ([]domain.CurriculumItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM curriculum_items i
		JOIN subjects s ON s.id = i.subject_id
		WHERE s.user_id = $1
		ORDER BY i.subject_id, i.position, i.title`, userID)
	if err != nil {
		return nil, store.NewStoreError("curriculum_item", "list", "failed to query items", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	items := []domain.CurriculumItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, store.NewStoreError("curriculum_item", "list", "failed to scan item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("curriculum_item", "list", "failed to iterate items", err)
	}
	return items, nil
}

// GetItem implements store.CurriculumStore.
func (s *PostgresCurriculumStore) GetItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.CurriculumItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM curriculum_items i
		JOIN subjects s ON s.id = i.subject_id
		WHERE i.id = $1 AND s.user_id = $2`, itemID, userID)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrItemNotFound
		}
		return nil, store.NewStoreError("curriculum_item", "get", "failed to load item", MapError(err))
	}
	return item, nil
}

// UpdateItemFlags implements store.CurriculumStore.
func (s *PostgresCurriculumStore) UpdateItemFlags(ctx context.Context, item *domain.CurriculumItem) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE curriculum_items
		SET studied = $2, reviewed = $3, solved = $4, updated_at = NOW()
		WHERE id = $1`,
		item.ID, item.Studied, item.Reviewed, item.Solved)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update item flags",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("curriculum_item", "update_flags", "failed to update item", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrItemNotFound)
}

func scanItem(row rowScanner) (*domain.CurriculumItem, error) {
	var (
		item     domain.CurriculumItem
		parentID uuid.NullUUID
	)
	if err := row.Scan(
		&item.ID,
		&item.SubjectID,
		&parentID,
		&item.Title,
		&item.Position,
		&item.Studied,
		&item.Reviewed,
		&item.Solved,
	); err != nil {
		return nil, err
	}
	if parentID.Valid {
		id := parentID.UUID
		item.ParentID = &id
	}
	return &item, nil
}
