package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/api"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/generation"
	"github.com/phrazzld/studyplan-api/internal/mocks"
	"github.com/phrazzld/studyplan-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanService(t *testing.T, mem *mocks.Memory, gen generation.TextGenerator) service.PlanService {
	t.Helper()
	svc, err := service.NewPlanService(newDeps(mem, gen))
	require.NoError(t, err)
	return svc
}

func TestNewPlanServiceRequiresStores(t *testing.T) {
	t.Parallel()
	deps := newDeps(mocks.NewMemory(), nil)
	deps.Tasks = nil

	_, err := service.NewPlanService(deps)
	var serr *service.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Message, "tasks")
}

func TestGeneratePlanFromCurriculum(t *testing.T) {
	t.Parallel()
	mem := mocks.NewMemory()
	userID := uuid.New()
	goal := seedGoal(t, mem, userID, ptr(day(5)), 2)
	math := mem.AddSubject(userID, "Math")
	seedObjectives(mem, math.ID, "Limits", "Derivatives")

	res, err := newPlanService(t, mem, nil).GeneratePlan(context.Background(), userID,
		service.GenerateRequest{Mode: domain.ModeCurriculum})
	require.NoError(t, err)

	assert.False(t, res.Reused)
	assert.Empty(t, res.DroppedUnits)
	assert.Equal(t, domain.ModeCurriculum, res.Plan.Mode)
	assert.Equal(t, &goal.ID, res.Plan.GoalID)
	assert.Equal(t, day(5), *res.Plan.EndDate)
	assert.Equal(t, today, res.Plan.StartDate)

	require.Len(t, res.Tasks, 6)
	type slot struct {
		kind  domain.TaskKind
		date  int
		order int
	}
	want := []slot{
		{domain.TaskKindStudy, 0, 0},
		{domain.TaskKindStudy, 0, 1},
		{domain.TaskKindReview, 1, 0},
		{domain.TaskKindReview, 1, 1},
		{domain.TaskKindSolve, 2, 0},
		{domain.TaskKindSolve, 2, 1},
	}
	for i, w := range want {
		task := res.Tasks[i]
		assert.Equal(t, w.kind, task.Kind, "task %d", i)
		assert.Equal(t, day(w.date), task.ScheduledDate, "task %d", i)
		assert.Equal(t, w.order, task.OrderIndex, "task %d", i)
		assert.Equal(t, "Math", task.SubjectName)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
	}
	assert.Len(t, mem.AllTasks(res.Plan.ID), 6)
}

func TestGeneratePlanReportsDroppedUnits(t *testing.T) {
	t.Parallel()
	mem := mocks.NewMemory()
	userID := uuid.New()
	seedGoal(t, mem, userID, ptr(day(2)), 1)
	math := mem.AddSubject(userID, "Math")
	seedObjectives(mem, math.ID, "Limits")

	res, err := newPlanService(t, mem, nil).GeneratePlan(context.Background(), userID,
		service.GenerateRequest{Mode: domain.ModeCurriculum})
	require.NoError(t, err)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, domain.TaskKindStudy, res.Tasks[0].Kind)
	require.Len(t, res.DroppedUnits, 2)
	assert.Equal(t, domain.TaskKindReview, res.DroppedUnits[0].Kind)
}

func TestGeneratePlanValidatesBeforeWriting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no goal", func(t *testing.T) {
		t.Parallel()
		mem := mocks.NewMemory()
		userID := uuid.New()
		_, err := newPlanService(t, mem, nil).GeneratePlan(ctx, userID,
			service.GenerateRequest{Mode: domain.ModeCurriculum})
		assert.ErrorIs(t, err, service.ErrNoActiveGoal)
		assert.Empty(t, mem.AllPlans(userID))
	})

	t.Run("goal without deadline", func(t *testing.T) {
		t.Parallel()
		mem := mocks.NewMemory()
		userID := uuid.New()
		seedGoal(t, mem, userID, nil, 2)
		_, err := newPlanService(t, mem, nil).GeneratePlan(ctx, userID,
			service.GenerateRequest{Mode: domain.ModeCurriculum})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "deadline", verr.Field)
		assert.Empty(t, mem.AllPlans(userID))
		assert.Zero(t, mem.TxCount)
	})

	tests := []struct {
		name  string
		req   service.GenerateRequest
		field string
	}{
		{"unknown mode", service.GenerateRequest{Mode: "random"}, "mode"},
		{"manual mode", service.GenerateRequest{Mode: domain.ModeManual}, "mode"},
		{"missing description", service.GenerateRequest{Mode: domain.ModeDescription, Description: "  "}, "description"},
		{"negative duration", service.GenerateRequest{Mode: domain.ModeCurriculum, DurationDays: -1}, "duration_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mem := mocks.NewMemory()
			_, err := newPlanService(t, mem, nil).GeneratePlan(ctx, uuid.New(), tt.req)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, mem.TxCount)
		})
	}
}

func TestRegenerationKeepsHistory(t *testing.T) {
	t.Parallel()
	mem := mocks.NewMemory()
	userID := uuid.New()
	seedGoal(t, mem, userID, ptr(day(5)), 2)
	math := mem.AddSubject(userID, "Math")
	seedObjectives(mem, math.ID, "Limits")

	plan := seedPlan(t, mem, userID, day(-1), domain.ModeCurriculum)
	past := seedTask(t, mem, plan.ID, day(-1), domain.TaskStatusPending, 0)
	done := seedTask(t, mem, plan.ID, day(0), domain.TaskStatusCompleted, 0)
	skipped := seedTask(t, mem, plan.ID, day(0), domain.TaskStatusSkipped, 1)
	future := seedTask(t, mem, plan.ID, day(1), domain.TaskStatusPending, 0)

	res, err := newPlanService(t, mem, nil).GeneratePlan(context.Background(), userID,
		service.GenerateRequest{Mode: domain.ModeCurriculum})
	require.NoError(t, err)

	assert.True(t, res.Reused)
	assert.Equal(t, plan.ID, res.Plan.ID)
	assert.Equal(t, day(-1), res.Plan.StartDate)

	all := mem.AllTasks(plan.ID)
	byID := make(map[uuid.UUID]domain.PlanTask, len(all))
	for _, task := range all {
		byID[task.ID] = task
	}
	for _, kept := range []domain.PlanTask{past, done, skipped} {
		got, ok := byID[kept.ID]
		require.True(t, ok, "task %s was removed", kept.ID)
		assert.Equal(t, kept.Status, got.Status)
		assert.Equal(t, kept.ScheduledDate, got.ScheduledDate)
		assert.Equal(t, kept.OrderIndex, got.OrderIndex)
	}
	assert.NotContains(t, byID, future.ID)

	// study + review fit today after the two surviving tasks; solve spills over.
	require.Len(t, res.Tasks, 3)
	assert.Equal(t, day(0), res.Tasks[0].ScheduledDate)
	assert.Equal(t, 2, res.Tasks[0].OrderIndex)
	assert.Equal(t, 3, res.Tasks[1].OrderIndex)
	assert.Equal(t, day(1), res.Tasks[2].ScheduledDate)
	assert.Equal(t, 0, res.Tasks[2].OrderIndex)
	assert.Len(t, all, 6)
}

func TestGeneratePlanRollsBackOnStoreFailure(t *testing.T) {
	t.Parallel()
	mem := mocks.NewMemory()
	userID := uuid.New()
	seedGoal(t, mem, userID, ptr(day(5)), 2)
	math := mem.AddSubject(userID, "Math")
	seedObjectives(mem, math.ID, "Limits")
	boom := errors.New("disk full")
	mem.Fail["tasks.CreateBatch"] = boom

	_, err := newPlanService(t, mem, nil).GeneratePlan(context.Background(), userID,
		service.GenerateRequest{Mode: domain.ModeCurriculum})

	var serr *service.ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "generate_plan", serr.Operation)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mem.AllPlans(userID))
}

func TestGeneratePlanSerializesPerUser(t *testing.T) {
	t.Parallel()
	mem := mocks.NewMemory()
	userID := uuid.New()
	seedGoal(t, mem, userID, ptr(day(10)), 3)
	math := mem.AddSubject(userID, "Math")
	seedObjectives(mem, math.ID, "Limits", "Series")
	svc := newPlanService(t, mem, nil)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.GeneratePlan(context.Background(), userID,
				service.GenerateRequest{Mode: domain.ModeCurriculum})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	plans := mem.AllPlans(userID)
	require.Len(t, plans, 1)
	assert.Len(t, mem.AllTasks(plans[0].ID), 6)
}

func TestGeneratePlanFromDescription(t *testing.T) {
	t.Parallel()
	mem := mocks.NewMemory()
	userID := uuid.New()
	math := mem.AddSubject(userID, "Math")
	gen := mocks.NewMockGeneratorWithText("```json\n" + `{
		"subjects": [
			{"name": "math", "sessions": 4, "duration_minutes": 50, "weak": true},
			{"name": "Physics", "sessions": 2, "duration_minutes": 0, "weak": false}
		],
		"review_passes": true,
		"duration_days": 0
	}` + "\n```")

	res, err := newPlanService(t, mem, gen).GeneratePlan(context.Background(), userID, service.GenerateRequest{
		Mode:        domain.ModeDescription,
		Description: "Math four times, I struggle with it. Physics twice. Add reviews.",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ModeDescription, res.Plan.Mode)
	assert.Nil(t, res.Plan.GoalID)
	assert.Equal(t, day(13), *res.Plan.EndDate)

	titles := make([]string, len(res.Tasks))
	for i, task := range res.Tasks {
		titles[i] = task.Title
		assert.Equal(t, day(i), task.ScheduledDate, "one task per day over a 14 day horizon")
	}
	assert.Equal(t, []string{
		"math session 1", "Physics session 1", "math session 2", "Physics session 2",
		"math session 3", "math session 4", "math review 1",
	}, titles)
	assert.Equal(t, &math.ID, res.Tasks[0].SubjectID)
	assert.Nil(t, res.Tasks[1].SubjectID)
	assert.Equal(t, 30, res.Tasks[6].DurationMinutes)
	assert.Equal(t, 60, res.Tasks[1].DurationMinutes)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Options.JSON)
	assert.Equal(t, generation.RoleSystem, calls[0].Turns[0].Role)
}

func TestGeneratePlanDescriptionHorizon(t *testing.T) {
	t.Parallel()
	answer := `{"subjects":[{"name":"History","sessions":2}],"duration_days":4}`

	t.Run("request overrides description", func(t *testing.T) {
		t.Parallel()
		mem := mocks.NewMemory()
		res, err := newPlanService(t, mem, mocks.NewMockGeneratorWithText(answer)).GeneratePlan(
			context.Background(), uuid.New(),
			service.GenerateRequest{Mode: domain.ModeDescription, Description: "history", DurationDays: 7})
		require.NoError(t, err)
		assert.Equal(t, day(6), *res.Plan.EndDate)
	})

	t.Run("description duration", func(t *testing.T) {
		t.Parallel()
		mem := mocks.NewMemory()
		res, err := newPlanService(t, mem, mocks.NewMockGeneratorWithText(answer)).GeneratePlan(
			context.Background(), uuid.New(),
			service.GenerateRequest{Mode: domain.ModeDescription, Description: "history"})
		require.NoError(t, err)
		assert.Equal(t, day(3), *res.Plan.EndDate)
	})
}

func TestParseDescriptionFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		gen  *mocks.MockGenerator
		want error
	}{
		{"generator unavailable", mocks.NewMockGeneratorWithError(generation.ErrGenerationUnavailable), generation.ErrGenerationUnavailable},
		{"generator failure", mocks.NewMockGeneratorWithError(generation.ErrContentBlocked), service.ErrDescriptionUnparseable},
		{"not json", mocks.NewMockGeneratorWithText("I could not parse that"), service.ErrDescriptionUnparseable},
		{"nothing schedulable", mocks.NewMockGeneratorWithText(`{"subjects":[]}`), service.ErrDescriptionUnparseable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mem := mocks.NewMemory()
			userID := uuid.New()
			_, err := newPlanService(t, mem, tt.gen).GeneratePlan(context.Background(), userID,
				service.GenerateRequest{Mode: domain.ModeDescription, Description: "study stuff"})
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, mem.AllPlans(userID))
		})
	}
}

func TestParseDescriptionOutageIsUnavailable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
	}{
		{"retries exhausted", fmt.Errorf("%w: exceeded maximum retry attempts (2)", generation.ErrTransientFailure)},
		{"outage from generator", fmt.Errorf("%w: exceeded maximum retry attempts (2): %w",
			generation.ErrGenerationUnavailable, generation.ErrTransientFailure)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newPlanService(t, mocks.NewMemory(), mocks.NewMockGeneratorWithError(tt.err))

			_, err := svc.ParseDescription(context.Background(), "two weeks of algebra")
			require.Error(t, err)
			assert.ErrorIs(t, err, generation.ErrGenerationUnavailable)
			assert.NotErrorIs(t, err, service.ErrDescriptionUnparseable)
			assert.Equal(t, http.StatusServiceUnavailable, api.MapErrorToStatusCode(err))
		})
	}
}

func TestParseDescriptionRejectsLongInput(t *testing.T) {
	t.Parallel()
	gen := mocks.NewMockGeneratorWithText(`{}`)
	long := make([]byte, service.MaxDescriptionLength+1)
	for i := range long {
		long[i] = 'a'
	}

	_, err := newPlanService(t, mocks.NewMemory(), gen).ParseDescription(context.Background(), string(long))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, gen.Calls())
}

func TestCreateManualPlanAbandonsActivePlan(t *testing.T) {
	t.Parallel()
	mem := mocks.NewMemory()
	userID := uuid.New()
	old := seedPlan(t, mem, userID, day(-3), domain.ModeCurriculum)
	svc := newPlanService(t, mem, nil)

	plan, err := svc.CreateManualPlan(context.Background(), userID, service.ManualPlanRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeManual, plan.Mode)
	assert.False(t, plan.AIGenerated)
	assert.Equal(t, today, plan.StartDate)

	prev, err := mem.Plans().GetByID(context.Background(), old.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusAbandoned, prev.Status)

	_, err = svc.CreateManualPlan(context.Background(), userID,
		service.ManualPlanRequest{StartDate: ptr(day(-1))})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddManualTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := mocks.NewMemory()
	userID := uuid.New()
	math := mem.AddSubject(userID, "Math")
	plan := seedPlan(t, mem, userID, today, domain.ModeManual)
	seedTask(t, mem, plan.ID, day(1), domain.TaskStatusPending, 0)
	svc := newPlanService(t, mem, nil)

	task, err := svc.AddManualTask(ctx, userID, plan.ID, service.ManualTaskRequest{
		SubjectID:       &math.ID,
		Title:           "Past paper",
		Date:            day(1),
		DurationMinutes: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, task.OrderIndex)
	assert.Equal(t, domain.TaskKindSession, task.Kind)
	assert.Equal(t, "Math", task.SubjectName)

	_, err = svc.AddManualTask(ctx, uuid.New(), plan.ID, service.ManualTaskRequest{Title: "x", Date: day(1), DurationMinutes: 10})
	assert.ErrorIs(t, err, service.ErrNotOwned)

	_, err = svc.AddManualTask(ctx, userID, plan.ID, service.ManualTaskRequest{Title: "x", Date: day(-1), DurationMinutes: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddManualTask(ctx, userID, plan.ID,
		service.ManualTaskRequest{SubjectID: ptr(uuid.New()), Title: "x", Date: day(1), DurationMinutes: 10})
	assert.ErrorIs(t, err, service.ErrSubjectNotFound)

	other := mocks.NewMemory()
	generated := seedPlan(t, other, userID, today, domain.ModeCurriculum)
	_, err = newPlanService(t, other, nil).AddManualTask(ctx, userID, generated.ID,
		service.ManualTaskRequest{Title: "x", Date: day(1), DurationMinutes: 10})
	assert.ErrorIs(t, err, service.ErrNotManualPlan)
}

func TestPlanLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := mocks.NewMemory()
	userID := uuid.New()
	svc := newPlanService(t, mem, nil)

	_, err := svc.GetActivePlan(ctx, userID)
	assert.ErrorIs(t, err, service.ErrNoActivePlan)
	_, err = svc.AbandonActivePlan(ctx, userID)
	assert.ErrorIs(t, err, service.ErrNoActivePlan)

	plan := seedPlan(t, mem, userID, today, domain.ModeManual)
	seedTask(t, mem, plan.ID, today, domain.TaskStatusPending, 0)

	view, err := svc.GetActivePlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, view.Plan.ID)
	assert.Len(t, view.Tasks, 1)

	_, err = svc.CompletePlan(ctx, uuid.New(), plan.ID)
	assert.ErrorIs(t, err, service.ErrNotOwned)

	completed, err := svc.CompletePlan(ctx, userID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusCompleted, completed.Status)

	_, err = svc.CompletePlan(ctx, userID, plan.ID)
	assert.ErrorIs(t, err, domain.ErrPlanTransition)

	_, err = svc.CompletePlan(ctx, userID, uuid.New())
	assert.ErrorIs(t, err, service.ErrPlanNotFound)
}
