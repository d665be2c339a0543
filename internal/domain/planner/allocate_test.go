package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func units(minutes ...int) []WorkUnit {
	out := make([]WorkUnit, len(minutes))
	for i, m := range minutes {
		out[i] = WorkUnit{Title: string(rune('A' + i)), DurationMinutes: m}
	}
	return out
}

func TestAllocateMinuteBudgetScenario(t *testing.T) {
	t.Parallel()
	s := uuid.New()
	idx := domain.CurriculumIndex{
		Subjects: []domain.Subject{{ID: s, Name: "Math"}},
		Items:    []domain.CurriculumItem{objective(s, "Limits", 0, false, false, false)},
	}
	queue := UnitsFromCurriculum(idx, nil, NewDefaultParams())

	alloc, err := Allocate(queue, MinuteBudget{DailyMinutes: 120, DaysUntilDeadline: 10}, day0)
	require.NoError(t, err)
	require.Len(t, alloc.Assignments, 3)
	assert.Empty(t, alloc.Dropped)

	// study (60) + review (45) = 105 fits in 120; solve moves to day 2.
	assert.Equal(t, day0, alloc.Assignments[0].Date)
	assert.Equal(t, 0, alloc.Assignments[0].OrderIndex)
	assert.Equal(t, domain.TaskKindStudy, alloc.Assignments[0].Unit.Kind)
	assert.Equal(t, day0, alloc.Assignments[1].Date)
	assert.Equal(t, 1, alloc.Assignments[1].OrderIndex)
	assert.Equal(t, domain.TaskKindReview, alloc.Assignments[1].Unit.Kind)
	assert.Equal(t, day0.AddDate(0, 0, 1), alloc.Assignments[2].Date)
	assert.Equal(t, 0, alloc.Assignments[2].OrderIndex)
	assert.Equal(t, domain.TaskKindSolve, alloc.Assignments[2].Unit.Kind)

	last, ok := alloc.LastDate()
	assert.True(t, ok)
	assert.Equal(t, day0.AddDate(0, 0, 1), last)
}

func TestAllocateMinuteBudgetDropsWhenDaysRunOut(t *testing.T) {
	t.Parallel()
	// daysLeft = 3 gives two working days; 60 minute budget fits one unit per day.
	alloc, err := Allocate(units(60, 60, 60, 60), MinuteBudget{DailyMinutes: 60, DaysUntilDeadline: 3}, day0)
	require.NoError(t, err)

	require.Len(t, alloc.Assignments, 2)
	assert.Equal(t, day0, alloc.Assignments[0].Date)
	assert.Equal(t, day0.AddDate(0, 0, 1), alloc.Assignments[1].Date)
	assert.Equal(t, []string{"C", "D"}, unitTitles(alloc.Dropped))
}

func TestMinuteBudgetAvailableDays(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, MinuteBudget{DaysUntilDeadline: 0}.AvailableDays())
	assert.Equal(t, 1, MinuteBudget{DaysUntilDeadline: 1}.AvailableDays())
	assert.Equal(t, 1, MinuteBudget{DaysUntilDeadline: 2}.AvailableDays())
	assert.Equal(t, 2, MinuteBudget{DaysUntilDeadline: 3}.AvailableDays())
	assert.Equal(t, 29, MinuteBudget{DaysUntilDeadline: 30}.AvailableDays())
}

func TestAllocateMinuteBudgetOversizedUnitGoesAlone(t *testing.T) {
	t.Parallel()
	alloc, err := Allocate(units(30, 200, 30, 30), MinuteBudget{DailyMinutes: 90, DaysUntilDeadline: 30}, day0)
	require.NoError(t, err)
	require.Len(t, alloc.Assignments, 4)

	assert.Equal(t, day0, alloc.Assignments[0].Date)
	assert.Equal(t, day0.AddDate(0, 0, 1), alloc.Assignments[1].Date)
	assert.Equal(t, day0.AddDate(0, 0, 2), alloc.Assignments[2].Date)
	assert.Equal(t, day0.AddDate(0, 0, 2), alloc.Assignments[3].Date)
}

func TestAllocateMinuteBudgetNeverOverfillsByCombination(t *testing.T) {
	t.Parallel()
	queue := units(45, 60, 15, 120, 30, 30, 30, 90, 10, 200, 5, 60, 60, 45)
	budget := MinuteBudget{DailyMinutes: 100, DaysUntilDeadline: 60}

	alloc, err := Allocate(queue, budget, day0)
	require.NoError(t, err)
	require.Len(t, alloc.Assignments, len(queue))

	load := map[time.Time]int{}
	count := map[time.Time]int{}
	for i, a := range alloc.Assignments {
		assert.Equal(t, queue[i].Title, a.Unit.Title, "order is preserved")
		assert.Equal(t, count[a.Date], a.OrderIndex, "order index follows insertion")
		load[a.Date] += a.Unit.DurationMinutes
		count[a.Date]++
	}
	for date, minutes := range load {
		if minutes > budget.DailyMinutes {
			assert.Equal(t, 1, count[date], "only a single oversized unit may exceed the budget on %s", date)
		}
	}
}

func TestAllocateMinuteBudgetRejectsZeroBudget(t *testing.T) {
	t.Parallel()
	_, err := Allocate(units(30), MinuteBudget{DailyMinutes: 0, DaysUntilDeadline: 5}, day0)
	assert.ErrorIs(t, err, ErrInvalidDailyBudget)
}

func TestAllocateEmptyQueue(t *testing.T) {
	t.Parallel()
	alloc, err := Allocate(nil, MinuteBudget{DailyMinutes: 60, DaysUntilDeadline: 5}, day0)
	require.NoError(t, err)
	assert.Empty(t, alloc.Assignments)
	assert.Empty(t, alloc.Dropped)
	_, ok := alloc.LastDate()
	assert.False(t, ok)
}

func TestCountBudgetTasksPerDay(t *testing.T) {
	t.Parallel()
	tests := []struct {
		total, days, max, want int
	}{
		{total: 0, days: 7, max: 3, want: 1},
		{total: 5, days: 7, max: 3, want: 1},
		{total: 8, days: 7, max: 3, want: 2},
		{total: 14, days: 7, max: 3, want: 2},
		{total: 40, days: 7, max: 3, want: 3},
		{total: 4, days: 0, max: 3, want: 3},
		{total: 40, days: 7, max: 0, want: 3},
	}
	for _, tc := range tests {
		got := CountBudget{AvailableDays: tc.days, MaxPerDay: tc.max}.TasksPerDay(tc.total)
		assert.Equal(t, tc.want, got, "%+v", tc)
	}
}

func TestAllocateCountBudgetNeverDrops(t *testing.T) {
	t.Parallel()
	queue := units(60, 60, 60, 60, 60, 60, 60, 60)

	// ceil(8/2) = 4 is clamped to 3, so the plan runs past the two requested days.
	alloc, err := Allocate(queue, CountBudget{AvailableDays: 2, MaxPerDay: 3}, day0)
	require.NoError(t, err)
	require.Len(t, alloc.Assignments, 8)
	assert.Empty(t, alloc.Dropped)

	wantDay := []int{0, 0, 0, 1, 1, 1, 2, 2}
	wantOrder := []int{0, 1, 2, 0, 1, 2, 0, 1}
	for i, a := range alloc.Assignments {
		assert.Equal(t, day0.AddDate(0, 0, wantDay[i]), a.Date, i)
		assert.Equal(t, wantOrder[i], a.OrderIndex, i)
	}
}

func TestAllocateCountBudgetSpreadsEvenly(t *testing.T) {
	t.Parallel()
	alloc, err := Allocate(units(30, 30, 30, 30), CountBudget{AvailableDays: 7, MaxPerDay: 3}, day0)
	require.NoError(t, err)

	for i, a := range alloc.Assignments {
		assert.Equal(t, day0.AddDate(0, 0, i), a.Date)
		assert.Equal(t, 0, a.OrderIndex)
	}
}

func TestAllocateNormalizesStartDate(t *testing.T) {
	t.Parallel()
	alloc, err := Allocate(units(10), CountBudget{AvailableDays: 1}, day0.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, day0, alloc.Assignments[0].Date)
}

func TestAllocateUnknownBudget(t *testing.T) {
	t.Parallel()
	_, err := Allocate(units(10), nil, day0)
	assert.ErrorIs(t, err, ErrUnknownBudget)
}
