package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestNewGoal(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deadline := time.Date(2026, 4, 1, 15, 30, 0, 0, time.UTC)

	goal, err := NewGoal(userID, "  Finals  ", &deadline, 2.5, nil, testToday)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, goal.ID)
	assert.Equal(t, "Finals", goal.Title)
	assert.True(t, goal.Active)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *goal.Deadline)
	assert.Equal(t, 150, goal.DailyMinutes())
	assert.NotNil(t, goal.SubjectIDs)
}

func TestNewGoalValidation(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	past := testToday.AddDate(0, 0, -1)

	tests := []struct {
		name  string
		title string
		hours float64
		dl    *time.Time
		field string
	}{
		{"missing title", " ", 2, nil, "title"},
		{"zero hours", "Exam", 0, nil, "hours_per_day"},
		{"negative hours", "Exam", -1, nil, "hours_per_day"},
		{"too many hours", "Exam", 25, nil, "hours_per_day"},
		{"deadline in past", "Exam", 2, &past, "deadline"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGoal(userID, tc.title, tc.dl, tc.hours, nil, testToday)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestNewGoalAcceptsDeadlineToday(t *testing.T) {
	t.Parallel()
	_, err := NewGoal(uuid.New(), "Exam", &testToday, 1, nil, testToday)
	assert.NoError(t, err)
}

func TestGoalInScope(t *testing.T) {
	t.Parallel()
	math, physics := uuid.New(), uuid.New()

	all := Goal{}
	assert.True(t, all.InScope(math))

	scoped := Goal{SubjectIDs: []uuid.UUID{math}}
	assert.True(t, scoped.InScope(math))
	assert.False(t, scoped.InScope(physics))
}
