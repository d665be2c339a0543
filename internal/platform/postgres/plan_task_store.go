package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// PostgresPlanTaskStore implements store.PlanTaskStore.
type PostgresPlanTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPlanTaskStore creates a plan task store on db. If logger is nil, the
// default logger is used.
func NewPostgresPlanTaskStore(db store.DBTX, logger *slog.Logger) *PostgresPlanTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPlanTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "plan_task_store")),
	}
}

var _ store.PlanTaskStore = (*PostgresPlanTaskStore)(nil)

const taskColumns = `id, plan_id, subject_id, subject_name, title, kind, scheduled_date,
	duration_minutes, status, priority, order_index, completed_at, actual_minutes,
	created_at, updated_at`

const taskOrder = ` ORDER BY scheduled_date, order_index, created_at`

// CreateBatch implements store.PlanTaskStore. All tasks go into one multi-row
// INSERT.
func (s *PostgresPlanTaskStore) CreateBatch(ctx context.Context, tasks []*domain.PlanTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if len(tasks) == 0 {
		return nil
	}

	const cols = 15
	values := make([]string, 0, len(tasks))
	args := make([]any, 0, len(tasks)*cols)
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			log.Warn("task validation failed during batch create",
				slog.String("error", err.Error()),
				slog.Int("index", i))
			return err
		}

		placeholders := make([]string, cols)
		for c := range cols {
			placeholders[c] = fmt.Sprintf("$%d", i*cols+c+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			t.ID, t.PlanID, t.SubjectID, t.SubjectName, t.Title, t.Kind, t.ScheduledDate,
			t.DurationMinutes, t.Status, t.Priority, t.OrderIndex, t.CompletedAt, t.ActualMinutes,
			t.CreatedAt, t.UpdatedAt,
		)
	}

	query := `INSERT INTO plan_tasks (` + taskColumns + `) VALUES ` + strings.Join(values, ", ")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert plan tasks",
			slog.String("error", err.Error()),
			slog.Int("count", len(tasks)))
		return store.NewStoreError("plan_task", "create_batch", "failed to insert tasks", MapError(err))
	}

	log.Debug("plan tasks created", slog.Int("count", len(tasks)))
	return nil
}

// GetByID implements store.PlanTaskStore.
func (s *PostgresPlanTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanTask, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM plan_tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("plan_task", "get", "failed to load task", MapError(err))
	}
	return task, nil
}

// Find implements store.PlanTaskStore.
func (s *PostgresPlanTaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]domain.PlanTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := taskFilterClause(filter)
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM plan_tasks WHERE `+where+taskOrder, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("plan_id", filter.PlanID.String()))
		return nil, store.NewStoreError("plan_task", "find", "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.PlanTask{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("plan_task", "find", "failed to scan task", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("plan_task", "find", "failed to iterate tasks", err)
	}
	return tasks, nil
}

// Update implements store.PlanTaskStore.
func (s *PostgresPlanTaskStore) Update(ctx context.Context, task *domain.PlanTask) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}
	task.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE plan_tasks
		SET scheduled_date = $2, status = $3, order_index = $4, completed_at = $5,
			actual_minutes = $6, updated_at = $7
		WHERE id = $1`,
		task.ID,
		task.ScheduledDate,
		task.Status,
		task.OrderIndex,
		task.CompletedAt,
		task.ActualMinutes,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("plan_task", "update", "failed to update task", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// RescheduleOverdue implements store.PlanTaskStore with a single UPDATE, so a
// second call on the same day finds nothing to move.
func (s *PostgresPlanTaskStore) RescheduleOverdue(
	ctx context.Context,
	planID uuid.UUID,
	today time.Time,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	today = domain.DateOf(today, time.UTC)

	result, err := s.db.ExecContext(ctx, `
		UPDATE plan_tasks
		SET scheduled_date = $2, updated_at = $3
		WHERE plan_id = $1 AND status = 'pending' AND scheduled_date < $2`,
		planID, today, time.Now().UTC())
	if err != nil {
		log.Error("failed to reschedule overdue tasks",
			slog.String("error", err.Error()),
			slog.String("plan_id", planID.String()))
		return 0, store.NewStoreError("plan_task", "reschedule", "failed to reschedule overdue tasks", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("plan_task", "reschedule", "failed to count rescheduled tasks", err)
	}
	log.Info("overdue tasks rescheduled",
		slog.String("plan_id", planID.String()),
		slog.Int64("count", n))
	return n, nil
}

// DeletePendingFrom implements store.PlanTaskStore.
func (s *PostgresPlanTaskStore) DeletePendingFrom(
	ctx context.Context,
	planID uuid.UUID,
	from time.Time,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM plan_tasks
		WHERE plan_id = $1 AND status = 'pending' AND scheduled_date >= $2`,
		planID, domain.DateOf(from, time.UTC))
	if err != nil {
		log.Error("failed to delete pending tasks",
			slog.String("error", err.Error()),
			slog.String("plan_id", planID.String()))
		return 0, store.NewStoreError("plan_task", "delete_pending", "failed to delete pending tasks", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("plan_task", "delete_pending", "failed to count deleted tasks", err)
	}
	return n, nil
}

// WithTx implements store.PlanTaskStore.
func (s *PostgresPlanTaskStore) WithTx(tx *sql.Tx) store.PlanTaskStore {
	return &PostgresPlanTaskStore{db: tx, logger: s.logger}
}

func taskFilterClause(f store.TaskFilter) (string, []any) {
	clauses := []string{"plan_id = $1"}
	args := []any{f.PlanID}

	if f.From != nil {
		args = append(args, domain.DateOf(*f.From, time.UTC))
		clauses = append(clauses, fmt.Sprintf("scheduled_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, domain.DateOf(*f.To, time.UTC))
		clauses = append(clauses, fmt.Sprintf("scheduled_date <= $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			args = append(args, string(st))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	return strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.PlanTask, error) {
	var (
		t           domain.PlanTask
		subjectID   uuid.NullUUID
		kind        string
		status      string
		completedAt sql.NullTime
		actual      sql.NullInt64
	)
	err := row.Scan(
		&t.ID,
		&t.PlanID,
		&subjectID,
		&t.SubjectName,
		&t.Title,
		&kind,
		&t.ScheduledDate,
		&t.DurationMinutes,
		&status,
		&t.Priority,
		&t.OrderIndex,
		&completedAt,
		&actual,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if subjectID.Valid {
		id := subjectID.UUID
		t.SubjectID = &id
	}
	t.Kind = domain.TaskKind(kind)
	t.Status = domain.TaskStatus(status)
	t.ScheduledDate = domain.DateOf(t.ScheduledDate, time.UTC)
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	if actual.Valid {
		m := int(actual.Int64)
		t.ActualMinutes = &m
	}
	return &t, nil
}
