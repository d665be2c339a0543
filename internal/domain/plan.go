package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlanStatus is the lifecycle state of a study plan.
type PlanStatus string

// Possible plan status values
const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusAbandoned PlanStatus = "abandoned"
	PlanStatusCompleted PlanStatus = "completed"
)

// GenerationMode records how a plan's tasks were produced.
type GenerationMode string

// Possible generation modes
const (
	ModeCurriculum  GenerationMode = "curriculum"
	ModeDescription GenerationMode = "description"
	ModeManual      GenerationMode = "manual"
)

// StudyPlan groups the scheduled tasks for one user. At most one plan per user
// is active.
type StudyPlan struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	GoalID      *uuid.UUID     `json:"goal_id,omitempty"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	Status      PlanStatus     `json:"status"`
	Mode        GenerationMode `json:"mode"`
	AIGenerated bool           `json:"ai_generated"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewStudyPlan creates an active plan starting on startDate.
func NewStudyPlan(
	userID uuid.UUID,
	goalID *uuid.UUID,
	startDate time.Time,
	endDate *time.Time,
	mode GenerationMode,
) (*StudyPlan, error) {
	now := time.Now().UTC()
	start := DateOf(startDate, time.UTC)
	if endDate != nil {
		e := DateOf(*endDate, time.UTC)
		endDate = &e
	}

	plan := &StudyPlan{
		ID:          uuid.New(),
		UserID:      userID,
		GoalID:      goalID,
		StartDate:   start,
		EndDate:     endDate,
		Status:      PlanStatusActive,
		Mode:        mode,
		AIGenerated: mode != ModeManual,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Validate checks the plan's fields.
func (p *StudyPlan) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "plan ID cannot be empty")
	}
	if p.UserID == uuid.Nil {
		return NewValidationError("user_id", "plan user ID cannot be empty")
	}
	if p.StartDate.IsZero() {
		return NewValidationError("start_date", "plan start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return NewValidationError("end_date", "plan end date cannot be before its start date")
	}
	if !IsValidPlanStatus(p.Status) {
		return NewValidationError("status", "invalid plan status")
	}
	if !IsValidGenerationMode(p.Mode) {
		return NewValidationError("mode", "invalid generation mode")
	}
	return nil
}

// IsActive reports whether the plan currently drives scheduling.
func (p *StudyPlan) IsActive() bool {
	return p.Status == PlanStatusActive
}

// Abandon moves an active plan to abandoned.
func (p *StudyPlan) Abandon() error {
	return p.transition(PlanStatusAbandoned)
}

// Complete moves an active plan to completed.
func (p *StudyPlan) Complete() error {
	return p.transition(PlanStatusCompleted)
}

func (p *StudyPlan) transition(to PlanStatus) error {
	if p.Status != PlanStatusActive {
		return ErrPlanTransition
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidPlanStatus checks if status is a known PlanStatus.
func IsValidPlanStatus(status PlanStatus) bool {
	switch status {
	case PlanStatusActive, PlanStatusAbandoned, PlanStatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidGenerationMode checks if mode is a known GenerationMode.
func IsValidGenerationMode(mode GenerationMode) bool {
	switch mode {
	case ModeCurriculum, ModeDescription, ModeManual:
		return true
	default:
		return false
	}
}
