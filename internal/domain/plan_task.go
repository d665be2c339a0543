package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the state of a plan task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// TaskKind is the kind of study action a task asks for.
type TaskKind string

// Possible task kinds
const (
	TaskKindStudy   TaskKind = "study"
	TaskKindReview  TaskKind = "review"
	TaskKindSolve   TaskKind = "solve"
	TaskKindSession TaskKind = "session"
)

// PlanTask is one scheduled piece of study work on a calendar date.
//
// Status transitions:
//
//	pending   -> completed  (Complete)
//	completed -> pending    (Reset)
//	pending   -> skipped    (Skip)
//	pending   -> pending    (Reschedule, date only)
//
// skipped is terminal.
type PlanTask struct {
	ID              uuid.UUID  `json:"id"`
	PlanID          uuid.UUID  `json:"plan_id"`
	SubjectID       *uuid.UUID `json:"subject_id,omitempty"`
	SubjectName     string     `json:"subject_name"`
	Title           string     `json:"title"`
	Kind            TaskKind   `json:"kind"`
	ScheduledDate   time.Time  `json:"scheduled_date"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          TaskStatus `json:"status"`
	Priority        int        `json:"priority"`
	OrderIndex      int        `json:"order_index"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	ActualMinutes   *int       `json:"actual_minutes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewPlanTask creates a pending task.
func NewPlanTask(
	planID uuid.UUID,
	subjectID *uuid.UUID,
	subjectName string,
	title string,
	kind TaskKind,
	date time.Time,
	durationMinutes int,
	priority int,
	orderIndex int,
) (*PlanTask, error) {
	now := time.Now().UTC()
	task := &PlanTask{
		ID:              uuid.New(),
		PlanID:          planID,
		SubjectID:       subjectID,
		SubjectName:     subjectName,
		Title:           strings.TrimSpace(title),
		Kind:            kind,
		ScheduledDate:   DateOf(date, time.UTC),
		DurationMinutes: durationMinutes,
		Status:          TaskStatusPending,
		Priority:        priority,
		OrderIndex:      orderIndex,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task's fields and the consistency of its completion data.
func (t *PlanTask) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "task ID cannot be empty")
	}
	if t.PlanID == uuid.Nil {
		return NewValidationError("plan_id", "task plan ID cannot be empty")
	}
	if t.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if !IsValidTaskKind(t.Kind) {
		return NewValidationError("kind", "invalid task kind")
	}
	if t.ScheduledDate.IsZero() {
		return NewValidationError("scheduled_date", "scheduled date is required")
	}
	if t.DurationMinutes <= 0 {
		return NewValidationError("duration_minutes", "duration must be greater than zero")
	}
	if t.OrderIndex < 0 {
		return NewValidationError("order_index", "order index cannot be negative")
	}
	if !IsValidTaskStatus(t.Status) {
		return NewValidationError("status", "invalid task status")
	}
	if t.Status == TaskStatusCompleted && t.CompletedAt == nil {
		return NewValidationError("completed_at", "completed task needs a completion time")
	}
	if t.Status != TaskStatusCompleted && (t.CompletedAt != nil || t.ActualMinutes != nil) {
		return NewValidationError("completed_at", "only completed tasks carry completion data")
	}
	if t.ActualMinutes != nil && *t.ActualMinutes <= 0 {
		return NewValidationError("actual_minutes", "actual duration must be greater than zero")
	}
	return nil
}

// IsOverdue reports whether the task is pending and scheduled before today.
func (t *PlanTask) IsOverdue(today time.Time) bool {
	return t.Status == TaskStatusPending && t.ScheduledDate.Before(DateOf(today, time.UTC))
}

// Complete marks a pending task as done. actualMinutes overrides the recorded
// duration; nil records the scheduled duration.
func (t *PlanTask) Complete(now time.Time, actualMinutes *int) error {
	if t.Status != TaskStatusPending {
		return ErrInvalidTransition
	}

	minutes := t.DurationMinutes
	if actualMinutes != nil {
		if *actualMinutes <= 0 {
			return NewValidationError("actual_minutes", "actual duration must be greater than zero")
		}
		minutes = *actualMinutes
	}

	completedAt := now.UTC()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &completedAt
	t.ActualMinutes = &minutes
	t.UpdatedAt = completedAt
	return nil
}

// Reset returns a completed task to pending and clears its completion data.
func (t *PlanTask) Reset() error {
	if t.Status != TaskStatusCompleted {
		return ErrInvalidTransition
	}
	t.Status = TaskStatusPending
	t.CompletedAt = nil
	t.ActualMinutes = nil
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Skip marks a pending task as skipped. No duration is recorded.
func (t *PlanTask) Skip() error {
	if t.Status != TaskStatusPending {
		return ErrInvalidTransition
	}
	t.Status = TaskStatusSkipped
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Reschedule moves a pending task to another date, keeping everything else.
func (t *PlanTask) Reschedule(date time.Time) error {
	if t.Status != TaskStatusPending {
		return ErrInvalidTransition
	}
	t.ScheduledDate = DateOf(date, time.UTC)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidTaskStatus checks if status is a known TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// IsValidTaskKind checks if kind is a known TaskKind.
func IsValidTaskKind(kind TaskKind) bool {
	switch kind {
	case TaskKindStudy, TaskKindReview, TaskKindSolve, TaskKindSession:
		return true
	default:
		return false
	}
}
