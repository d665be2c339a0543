package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTaskFilterMatches(t *testing.T) {
	planID := uuid.New()
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	from := day
	to := day.AddDate(0, 0, 2)
	task := &domain.PlanTask{PlanID: planID, ScheduledDate: day.AddDate(0, 0, 1), Status: domain.TaskStatusPending}

	tests := []struct {
		name   string
		filter TaskFilter
		want   bool
	}{
		{"plan only", TaskFilter{PlanID: planID}, true},
		{"other plan", TaskFilter{PlanID: uuid.New()}, false},
		{"inside range", TaskFilter{PlanID: planID, From: &from, To: &to}, true},
		{"before range", TaskFilter{PlanID: planID, From: &to}, false},
		{"after range", TaskFilter{PlanID: planID, To: &from}, false},
		{"status match", TaskFilter{PlanID: planID, Statuses: []domain.TaskStatus{domain.TaskStatusSkipped, domain.TaskStatusPending}}, true},
		{"status mismatch", TaskFilter{PlanID: planID, Statuses: []domain.TaskStatus{domain.TaskStatusCompleted}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(task))
		})
	}
}
