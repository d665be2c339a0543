package api

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/domain/planner"
	"github.com/phrazzld/studyplan-api/internal/service"
)

// Dates travel as YYYY-MM-DD strings; timestamps as RFC 3339.

// SaveGoalRequest is the payload of PUT /goal.
type SaveGoalRequest struct {
	Title       string      `json:"title"         validate:"required,max=200"`
	Deadline    string      `json:"deadline"      validate:"omitempty,date"`
	HoursPerDay float64     `json:"hours_per_day" validate:"gt=0,lte=24"`
	SubjectIDs  []uuid.UUID `json:"subject_ids"`
}

// GeneratePlanRequest is the payload of POST /plans/generate.
type GeneratePlanRequest struct {
	Mode         string `json:"mode"          validate:"required,oneof=curriculum description"`
	Description  string `json:"description"   validate:"required_if=Mode description,max=4000"`
	DurationDays int    `json:"duration_days" validate:"omitempty,min=1,max=365"`
}

// ParseDescriptionRequest is the payload of POST /plans/parse-description.
type ParseDescriptionRequest struct {
	Description string `json:"description" validate:"required,max=4000"`
}

// ManualPlanRequest is the payload of POST /plans/manual. Both dates are optional.
type ManualPlanRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,date"`
	EndDate   string `json:"end_date"   validate:"omitempty,date"`
}

// ManualTaskRequest is the payload of POST /plans/{planID}/tasks.
type ManualTaskRequest struct {
	SubjectID       *uuid.UUID `json:"subject_id"`
	Title           string     `json:"title"            validate:"required,max=300"`
	Kind            string     `json:"kind"             validate:"omitempty,oneof=study review solve session"`
	Date            string     `json:"date"             validate:"required,date"`
	DurationMinutes int        `json:"duration_minutes" validate:"min=1,max=1440"`
	Priority        int        `json:"priority"         validate:"omitempty,min=1,max=3"`
}

// CompleteTaskRequest is the optional payload of POST /tasks/{taskID}/complete.
type CompleteTaskRequest struct {
	ActualMinutes *int `json:"actual_minutes" validate:"omitempty,min=1,max=1440"`
}

// RescheduleTaskRequest is the payload of POST /tasks/{taskID}/reschedule.
type RescheduleTaskRequest struct {
	Date string `json:"date" validate:"required,date"`
}

// CreateSubjectRequest is the payload of POST /subjects.
type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateItemRequest is the payload of POST /curriculum/items.
type CreateItemRequest struct {
	SubjectID uuid.UUID  `json:"subject_id" validate:"required"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Title     string     `json:"title"      validate:"required,max=300"`
	Position  int        `json:"position"   validate:"min=0"`
}

// UpdateItemFlagsRequest is the payload of PATCH /curriculum/items/{itemID}.
type UpdateItemFlagsRequest struct {
	Studied  *bool `json:"studied"`
	Reviewed *bool `json:"reviewed"`
	Solved   *bool `json:"solved"`
}

// GoalResponse is the wire form of a goal.
type GoalResponse struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Deadline    *string     `json:"deadline,omitempty"`
	HoursPerDay float64     `json:"hours_per_day"`
	SubjectIDs  []uuid.UUID `json:"subject_ids"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PlanResponse is the wire form of a study plan.
type PlanResponse struct {
	ID          uuid.UUID  `json:"id"`
	GoalID      *uuid.UUID `json:"goal_id,omitempty"`
	StartDate   string     `json:"start_date"`
	EndDate     *string    `json:"end_date,omitempty"`
	Status      string     `json:"status"`
	Mode        string     `json:"mode"`
	AIGenerated bool       `json:"ai_generated"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskResponse is the wire form of a plan task.
type TaskResponse struct {
	ID              uuid.UUID  `json:"id"`
	PlanID          uuid.UUID  `json:"plan_id"`
	SubjectID       *uuid.UUID `json:"subject_id,omitempty"`
	SubjectName     string     `json:"subject_name"`
	Title           string     `json:"title"`
	Kind            string     `json:"kind"`
	ScheduledDate   string     `json:"scheduled_date"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	Priority        int        `json:"priority"`
	OrderIndex      int        `json:"order_index"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	ActualMinutes   *int       `json:"actual_minutes,omitempty"`
}

// DroppedUnitResponse describes work that did not fit before the deadline.
type DroppedUnitResponse struct {
	SubjectName     string `json:"subject_name"`
	Kind            string `json:"kind"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes"`
}

// GeneratePlanResponse answers POST /plans/generate.
type GeneratePlanResponse struct {
	Plan         PlanResponse          `json:"plan"`
	Tasks        []TaskResponse        `json:"tasks"`
	DroppedUnits []DroppedUnitResponse `json:"dropped_units"`
	Reused       bool                  `json:"reused"`
}

// PlanViewResponse is a plan with its tasks.
type PlanViewResponse struct {
	Plan  PlanResponse   `json:"plan"`
	Tasks []TaskResponse `json:"tasks"`
}

// RescheduleOverdueResponse answers POST /plans/{planID}/reschedule-overdue.
type RescheduleOverdueResponse struct {
	Moved int64 `json:"moved"`
}

// DayResponse is one day of the progress view.
type DayResponse struct {
	Date           string `json:"date"`
	Label          string `json:"label"`
	TaskCount      int    `json:"task_count"`
	CompletedCount int    `json:"completed_count"`
	TotalMinutes   int    `json:"total_minutes"`
	IsExamDay      bool   `json:"is_exam_day"`
	IsPast         bool   `json:"is_past"`
}

// SummaryResponse is the plan-level progress view.
type SummaryResponse struct {
	DaysLeft       int            `json:"days_left"`
	TotalTasks     int            `json:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	SkippedTasks   int            `json:"skipped_tasks"`
	OverdueTasks   int            `json:"overdue_tasks"`
	CompletionPct  int            `json:"completion_pct"`
	TodayTasks     []TaskResponse `json:"today_tasks"`
	Days           []DayResponse  `json:"days"`
}

// StatusResponse answers GET /status.
type StatusResponse struct {
	Plan            PlanResponse    `json:"plan"`
	Goal            *GoalResponse   `json:"goal,omitempty"`
	Summary         SummaryResponse `json:"summary"`
	Narrative       string          `json:"narrative"`
	NarrativeSource string          `json:"narrative_source"`
}

// SubjectResponse is a subject with its objectives.
type SubjectResponse struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Objectives []ItemResponse `json:"objectives"`
}

// ItemResponse is a curriculum item. Lessons is only set on objectives.
type ItemResponse struct {
	ID        uuid.UUID      `json:"id"`
	SubjectID uuid.UUID      `json:"subject_id"`
	ParentID  *uuid.UUID     `json:"parent_id,omitempty"`
	Title     string         `json:"title"`
	Position  int            `json:"position"`
	Studied   bool           `json:"studied"`
	Reviewed  bool           `json:"reviewed"`
	Solved    bool           `json:"solved"`
	Lessons   []ItemResponse `json:"lessons,omitempty"`
}

// CurriculumResponse answers GET /curriculum.
type CurriculumResponse struct {
	Subjects []SubjectResponse `json:"subjects"`
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := shared.FormatDate(*t)
	return &s
}

func goalToResponse(g *domain.Goal) GoalResponse {
	ids := g.SubjectIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return GoalResponse{
		ID:          g.ID,
		Title:       g.Title,
		Deadline:    optionalDate(g.Deadline),
		HoursPerDay: g.HoursPerDay,
		SubjectIDs:  ids,
		Active:      g.Active,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func planToResponse(p *domain.StudyPlan) PlanResponse {
	return PlanResponse{
		ID:          p.ID,
		GoalID:      p.GoalID,
		StartDate:   shared.FormatDate(p.StartDate),
		EndDate:     optionalDate(p.EndDate),
		Status:      string(p.Status),
		Mode:        string(p.Mode),
		AIGenerated: p.AIGenerated,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func taskToResponse(t *domain.PlanTask) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		PlanID:          t.PlanID,
		SubjectID:       t.SubjectID,
		SubjectName:     t.SubjectName,
		Title:           t.Title,
		Kind:            string(t.Kind),
		ScheduledDate:   shared.FormatDate(t.ScheduledDate),
		DurationMinutes: t.DurationMinutes,
		Status:          string(t.Status),
		Priority:        t.Priority,
		OrderIndex:      t.OrderIndex,
		CompletedAt:     t.CompletedAt,
		ActualMinutes:   t.ActualMinutes,
	}
}

func tasksToResponse(tasks []domain.PlanTask) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskToResponse(&tasks[i]))
	}
	return out
}

func generateToResponse(res *service.GenerateResult) GeneratePlanResponse {
	dropped := make([]DroppedUnitResponse, 0, len(res.DroppedUnits))
	for _, u := range res.DroppedUnits {
		dropped = append(dropped, DroppedUnitResponse{
			SubjectName:     u.SubjectName,
			Kind:            string(u.Kind),
			Title:           u.Title,
			DurationMinutes: u.DurationMinutes,
		})
	}
	return GeneratePlanResponse{
		Plan:         planToResponse(res.Plan),
		Tasks:        tasksToResponse(res.Tasks),
		DroppedUnits: dropped,
		Reused:       res.Reused,
	}
}

func summaryToResponse(s planner.Summary) SummaryResponse {
	days := make([]DayResponse, 0, len(s.Days))
	for _, d := range s.Days {
		days = append(days, DayResponse{
			Date:           shared.FormatDate(d.Date),
			Label:          d.Label,
			TaskCount:      d.TaskCount,
			CompletedCount: d.CompletedCount,
			TotalMinutes:   d.TotalMinutes,
			IsExamDay:      d.IsExamDay,
			IsPast:         d.IsPast,
		})
	}
	return SummaryResponse{
		DaysLeft:       s.DaysLeft,
		TotalTasks:     s.TotalTasks,
		CompletedTasks: s.CompletedTasks,
		SkippedTasks:   s.SkippedTasks,
		OverdueTasks:   s.OverdueTasks,
		CompletionPct:  s.CompletionPct,
		TodayTasks:     tasksToResponse(s.TodayTasks),
		Days:           days,
	}
}

func statusToResponse(st *service.Status) StatusResponse {
	resp := StatusResponse{
		Plan:            planToResponse(st.Plan),
		Summary:         summaryToResponse(st.Summary),
		Narrative:       st.Narrative,
		NarrativeSource: st.NarrativeSource,
	}
	if st.Goal != nil {
		g := goalToResponse(st.Goal)
		resp.Goal = &g
	}
	return resp
}

func itemToResponse(it *domain.CurriculumItem) ItemResponse {
	return ItemResponse{
		ID:        it.ID,
		SubjectID: it.SubjectID,
		ParentID:  it.ParentID,
		Title:     it.Title,
		Position:  it.Position,
		Studied:   it.Studied,
		Reviewed:  it.Reviewed,
		Solved:    it.Solved,
	}
}

// curriculumToResponse nests lessons under their objectives and objectives
// under their subjects, each level ordered by position then title.
func curriculumToResponse(ci *domain.CurriculumIndex) CurriculumResponse {
	byPosition := func(items []ItemResponse) {
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Position != items[j].Position {
				return items[i].Position < items[j].Position
			}
			return items[i].Title < items[j].Title
		})
	}

	lessons := make(map[uuid.UUID][]ItemResponse)
	objectives := make(map[uuid.UUID][]ItemResponse)
	for i := range ci.Items {
		it := &ci.Items[i]
		if it.IsObjective() {
			continue
		}
		lessons[*it.ParentID] = append(lessons[*it.ParentID], itemToResponse(it))
	}
	for i := range ci.Items {
		it := &ci.Items[i]
		if !it.IsObjective() {
			continue
		}
		r := itemToResponse(it)
		r.Lessons = lessons[it.ID]
		byPosition(r.Lessons)
		objectives[it.SubjectID] = append(objectives[it.SubjectID], r)
	}

	subjects := make([]SubjectResponse, 0, len(ci.Subjects))
	for _, s := range ci.Subjects {
		objs := objectives[s.ID]
		if objs == nil {
			objs = []ItemResponse{}
		}
		byPosition(objs)
		subjects = append(subjects, SubjectResponse{ID: s.ID, Name: s.Name, Objectives: objs})
	}
	sort.SliceStable(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return CurriculumResponse{Subjects: subjects}
}
