package planner

import (
	"math"
	"sort"
	"time"

	"github.com/phrazzld/studyplan-api/internal/domain"
)

// Summary is the plan-level progress view.
type Summary struct {
	DaysLeft       int               `json:"days_left"`
	TotalTasks     int               `json:"total_tasks"`
	CompletedTasks int               `json:"completed_tasks"`
	SkippedTasks   int               `json:"skipped_tasks"`
	OverdueTasks   int               `json:"overdue_tasks"`
	CompletionPct  int               `json:"completion_pct"`
	TodayTasks     []domain.PlanTask `json:"today_tasks"`
	Days           []DaySummary      `json:"days"`
}

// DaySummary is the progress view of one calendar day.
type DaySummary struct {
	Date           time.Time `json:"date"`
	Label          string    `json:"label"`
	TaskCount      int       `json:"task_count"`
	CompletedCount int       `json:"completed_count"`
	TotalMinutes   int       `json:"total_minutes"`
	IsExamDay      bool      `json:"is_exam_day"`
	IsPast         bool      `json:"is_past"`
}

// Summarize computes plan and day summaries for tasks as seen on today. deadline
// may be nil; when set and no task falls on it, a zero-task exam day is added so
// the deadline always shows up in the day list.
func Summarize(tasks []domain.PlanTask, deadline *time.Time, today time.Time) Summary {
	today = domain.DateOf(today, time.UTC)
	var examDay time.Time
	if deadline != nil {
		examDay = domain.DateOf(*deadline, time.UTC)
	}

	s := Summary{
		TotalTasks: len(tasks),
		TodayTasks: []domain.PlanTask{},
		Days:       []DaySummary{},
	}
	if deadline != nil {
		s.DaysLeft = max(0, domain.DaysBetween(today, examDay))
	}

	byDate := make(map[time.Time]*DaySummary)
	for _, task := range tasks {
		date := domain.DateOf(task.ScheduledDate, time.UTC)

		switch task.Status {
		case domain.TaskStatusCompleted:
			s.CompletedTasks++
		case domain.TaskStatusSkipped:
			s.SkippedTasks++
		}
		if task.IsOverdue(today) {
			s.OverdueTasks++
		}
		if date.Equal(today) {
			s.TodayTasks = append(s.TodayTasks, task)
		}

		day, ok := byDate[date]
		if !ok {
			day = newDaySummary(date, today, deadline != nil && date.Equal(examDay))
			byDate[date] = day
		}
		day.TaskCount++
		day.TotalMinutes += task.DurationMinutes
		if task.Status == domain.TaskStatusCompleted {
			day.CompletedCount++
		}
	}

	if deadline != nil {
		if _, ok := byDate[examDay]; !ok {
			byDate[examDay] = newDaySummary(examDay, today, true)
		}
	}

	s.CompletionPct = CompletionPct(s.CompletedTasks, s.TotalTasks)

	sort.SliceStable(s.TodayTasks, func(i, j int) bool {
		return s.TodayTasks[i].OrderIndex < s.TodayTasks[j].OrderIndex
	})

	for _, day := range byDate {
		s.Days = append(s.Days, *day)
	}
	sort.Slice(s.Days, func(i, j int) bool {
		return s.Days[i].Date.Before(s.Days[j].Date)
	})

	return s
}

// CompletionPct is round(completed/total*100), or 0 when total is 0.
func CompletionPct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	return min(100, max(0, pct))
}

// DayLabel returns "Today", "Tomorrow" or a short weekday and date such as "Mon, Mar 9".
func DayLabel(date, today time.Time) string {
	date, today = domain.DateOf(date, time.UTC), domain.DateOf(today, time.UTC)
	switch {
	case date.Equal(today):
		return "Today"
	case date.Equal(domain.AddDays(today, 1)):
		return "Tomorrow"
	default:
		return date.Format("Mon, Jan 2")
	}
}

func newDaySummary(date, today time.Time, exam bool) *DaySummary {
	return &DaySummary{
		Date:      date,
		Label:     DayLabel(date, today),
		IsExamDay: exam,
		IsPast:    date.Before(today),
	}
}
