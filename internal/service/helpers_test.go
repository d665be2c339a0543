package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/config"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/generation"
	"github.com/phrazzld/studyplan-api/internal/mocks"
	"github.com/phrazzld/studyplan-api/internal/service"
	"github.com/stretchr/testify/require"
)

// now is Wednesday 2026-05-06, midday UTC.
var now = time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC)

var today = time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return today.AddDate(0, 0, offset)
}

func newDeps(mem *mocks.Memory, gen generation.TextGenerator) service.Deps {
	return service.Deps{
		Transactor: mem,
		Goals:      mem.Goals(),
		Plans:      mem.Plans(),
		Tasks:      mem.Tasks(),
		Curriculum: mem.Curriculum(),
		Generator:  gen,
		Planner: config.PlannerConfig{
			Timezone:               "UTC",
			DefaultDescriptionDays: 14,
			MaxTasksPerDay:         3,
		},
		LLM: config.LLMConfig{
			NarrativeTimeoutSeconds: 1,
			NarrativeMaxTokens:      200,
			NarrativeTemperature:    0.7,
			ParseTimeoutSeconds:     1,
		},
		Clock: func() time.Time { return now },
	}
}

func seedGoal(t *testing.T, mem *mocks.Memory, userID uuid.UUID, deadline *time.Time, hours float64) *domain.Goal {
	t.Helper()
	goal, err := domain.NewGoal(userID, "Finals", deadline, hours, nil, today)
	require.NoError(t, err)
	mem.PutGoal(*goal)
	return goal
}

func seedObjectives(mem *mocks.Memory, subjectID uuid.UUID, titles ...string) {
	for i, title := range titles {
		mem.AddItem(domain.CurriculumItem{SubjectID: subjectID, Title: title, Position: i})
	}
}

func seedPlan(t *testing.T, mem *mocks.Memory, userID uuid.UUID, start time.Time, mode domain.GenerationMode) *domain.StudyPlan {
	t.Helper()
	plan, err := domain.NewStudyPlan(userID, nil, start, nil, mode)
	require.NoError(t, err)
	mem.PutPlan(*plan)
	return plan
}

func seedTask(
	t *testing.T,
	mem *mocks.Memory,
	planID uuid.UUID,
	date time.Time,
	status domain.TaskStatus,
	order int,
) domain.PlanTask {
	t.Helper()
	task, err := domain.NewPlanTask(planID, nil, "", "seeded", domain.TaskKindSession, date, 30, 1, order)
	require.NoError(t, err)
	switch status {
	case domain.TaskStatusCompleted:
		require.NoError(t, task.Complete(now, nil))
	case domain.TaskStatusSkipped:
		require.NoError(t, task.Skip())
	}
	mem.PutTask(*task)
	return *task
}

func ptr[T any](v T) *T {
	return &v
}
