package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxHoursPerDay bounds the daily study budget of a goal.
const MaxHoursPerDay = 24

// Goal is what a learner is studying towards: a title, an optional deadline, a
// daily time budget and the subjects in scope. Only one goal per user is active.
type Goal struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Title       string      `json:"title"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	HoursPerDay float64     `json:"hours_per_day"`
	SubjectIDs  []uuid.UUID `json:"subject_ids"` // empty means every subject
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewGoal creates an active goal for userID. today is the learner's current
// calendar date and is used to reject deadlines in the past.
func NewGoal(
	userID uuid.UUID,
	title string,
	deadline *time.Time,
	hoursPerDay float64,
	subjectIDs []uuid.UUID,
	today time.Time,
) (*Goal, error) {
	now := time.Now().UTC()
	if deadline != nil {
		d := DateOf(*deadline, time.UTC)
		deadline = &d
	}
	if subjectIDs == nil {
		subjectIDs = []uuid.UUID{}
	}

	goal := &Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Deadline:    deadline,
		HoursPerDay: hoursPerDay,
		SubjectIDs:  subjectIDs,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if deadline != nil && deadline.Before(DateOf(today, time.UTC)) {
		return nil, NewValidationError("deadline", "deadline cannot be in the past")
	}

	return goal, nil
}

// Validate checks the goal's own fields. It does not look at the clock.
func (g *Goal) Validate() error {
	if g.ID == uuid.Nil {
		return NewValidationError("id", "goal ID cannot be empty")
	}
	if g.UserID == uuid.Nil {
		return NewValidationError("user_id", "goal user ID cannot be empty")
	}
	if strings.TrimSpace(g.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if g.HoursPerDay <= 0 {
		return NewValidationError("hours_per_day", "daily study hours must be greater than zero")
	}
	if g.HoursPerDay > MaxHoursPerDay {
		return NewValidationError("hours_per_day", "daily study hours cannot exceed 24")
	}
	return nil
}

// DailyMinutes is the goal's daily budget in whole minutes.
func (g *Goal) DailyMinutes() int {
	return int(g.HoursPerDay * 60)
}

// InScope reports whether subjectID belongs to the goal's subject set.
func (g *Goal) InScope(subjectID uuid.UUID) bool {
	if len(g.SubjectIDs) == 0 {
		return true
	}
	for _, id := range g.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}
