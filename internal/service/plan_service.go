package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/domain/planner"
	"github.com/phrazzld/studyplan-api/internal/generation"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// MaxDescriptionLength bounds the free-text plan description sent for parsing.
const MaxDescriptionLength = 4000

// defaultDescriptionDays is used when the planner config leaves the horizon unset.
const defaultDescriptionDays = 14

// GenerateRequest selects how a plan is generated.
type GenerateRequest struct {
	// Mode is ModeCurriculum or ModeDescription.
	Mode domain.GenerationMode
	// Description is the free-text plan for ModeDescription.
	Description string
	// DurationDays overrides the description horizon when positive.
	DurationDays int
}

// GenerateResult is the outcome of GeneratePlan.
type GenerateResult struct {
	Plan *domain.StudyPlan
	// Tasks are the newly created tasks only.
	Tasks []domain.PlanTask
	// DroppedUnits did not fit before the deadline and were not scheduled.
	DroppedUnits []planner.WorkUnit
	// Reused is true when the existing active plan was regenerated in place.
	Reused bool
}

// ManualPlanRequest describes an empty plan the learner fills by hand.
type ManualPlanRequest struct {
	// StartDate defaults to today.
	StartDate *time.Time
	EndDate   *time.Time
}

// ManualTaskRequest describes one task added to a manual plan.
type ManualTaskRequest struct {
	SubjectID       *uuid.UUID
	Title           string
	Kind            domain.TaskKind
	Date            time.Time
	DurationMinutes int
	Priority        int
}

// PlanView is a plan with all of its tasks.
type PlanView struct {
	Plan  *domain.StudyPlan `json:"plan"`
	Tasks []domain.PlanTask `json:"tasks"`
}

// PlanService owns the study plan lifecycle. Mutations of one user's plans are
// serialized.
type PlanService interface {
	// GeneratePlan builds a schedule from the curriculum or a description. It
	// reuses the active plan, replacing its pending tasks from today on, or
	// creates a new active plan. Completed, skipped and past tasks survive.
	GeneratePlan(ctx context.Context, userID uuid.UUID, req GenerateRequest) (*GenerateResult, error)

	// ParseDescription turns a free-text description into a DescriptionSource.
	ParseDescription(ctx context.Context, description string) (planner.DescriptionSource, error)

	// CreateManualPlan abandons the active plan, if any, and starts an empty manual plan.
	CreateManualPlan(ctx context.Context, userID uuid.UUID, req ManualPlanRequest) (*domain.StudyPlan, error)

	// GetActivePlan returns the active plan and its tasks or ErrNoActivePlan.
	GetActivePlan(ctx context.Context, userID uuid.UUID) (*PlanView, error)

	// AbandonActivePlan abandons the user's active plan.
	AbandonActivePlan(ctx context.Context, userID uuid.UUID) (*domain.StudyPlan, error)

	// CompletePlan marks the plan as completed.
	CompletePlan(ctx context.Context, userID, planID uuid.UUID) (*domain.StudyPlan, error)

	// AddManualTask adds a task to an active manual plan.
	AddManualTask(
		ctx context.Context,
		userID, planID uuid.UUID,
		req ManualTaskRequest,
	) (*domain.PlanTask, error)
}

type planServiceImpl struct {
	deps   Deps
	params *planner.Params
	locks  *userLocks
	logger *slog.Logger
}

var _ PlanService = (*planServiceImpl)(nil)

// NewPlanService creates a PlanService. It needs the transactor and every store;
// a nil Generator disables description parsing.
func NewPlanService(deps Deps) (PlanService, error) {
	if err := deps.require("plan_service", "transactor", "goals", "plans", "tasks", "curriculum"); err != nil {
		return nil, err
	}

	params := planner.NewDefaultParams()
	if deps.Planner.MaxTasksPerDay > 0 {
		params.MaxTasksPerDay = deps.Planner.MaxTasksPerDay
	}

	return &planServiceImpl{
		deps:   deps,
		params: params,
		locks:  newUserLocks(),
		logger: deps.Logger.With(slog.String("component", "plan_service")),
	}, nil
}

// generation inputs resolved before anything is written
type generationPlan struct {
	mode    domain.GenerationMode
	goalID  *uuid.UUID
	endDate *time.Time
	alloc   planner.Allocation
}

// GeneratePlan implements PlanService.
func (s *planServiceImpl) GeneratePlan(
	ctx context.Context,
	userID uuid.UUID,
	req GenerateRequest,
) (*GenerateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("mode", string(req.Mode)))

	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}

	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	today := s.deps.today()
	gp, err := s.prepare(ctx, userID, req, today)
	if err != nil {
		return nil, err
	}
	if len(gp.alloc.Dropped) > 0 {
		log.Warn("work units did not fit before the deadline",
			slog.Int("dropped", len(gp.alloc.Dropped)),
			slog.Int("scheduled", len(gp.alloc.Assignments)))
	}

	result := &GenerateResult{DroppedUnits: gp.alloc.Dropped, Tasks: []domain.PlanTask{}}
	err = s.deps.Transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		plans := s.deps.Plans.WithTx(tx)
		tasks := s.deps.Tasks.WithTx(tx)

		plan, err := plans.GetActiveForUser(ctx, userID)
		switch {
		case err == nil:
			deleted, err := tasks.DeletePendingFrom(ctx, plan.ID, today)
			if err != nil {
				return err
			}
			log.Debug("replaced pending tasks", slog.Int64("deleted", deleted))

			if plan.StartDate.After(today) {
				plan.StartDate = today
			}
			plan.GoalID = gp.goalID
			plan.EndDate = gp.endDate
			plan.Mode = gp.mode
			plan.AIGenerated = true
			if err := plans.Update(ctx, plan); err != nil {
				return err
			}
			result.Reused = true
		case errors.Is(err, store.ErrNotFound):
			plan, err = domain.NewStudyPlan(userID, gp.goalID, today, gp.endDate, gp.mode)
			if err != nil {
				return err
			}
			if err := plans.Create(ctx, plan); err != nil {
				return err
			}
		default:
			return err
		}

		offsets, err := orderOffsets(ctx, tasks, plan.ID, today)
		if err != nil {
			return err
		}

		created := make([]*domain.PlanTask, 0, len(gp.alloc.Assignments))
		for _, a := range gp.alloc.Assignments {
			task, err := domain.NewPlanTask(
				plan.ID,
				a.Unit.SubjectID,
				a.Unit.SubjectName,
				a.Unit.Title,
				a.Unit.Kind,
				a.Date,
				a.Unit.DurationMinutes,
				a.Unit.Priority,
				a.OrderIndex+offsets[a.Date],
			)
			if err != nil {
				return err
			}
			created = append(created, task)
		}
		if len(created) > 0 {
			if err := tasks.CreateBatch(ctx, created); err != nil {
				return err
			}
		}

		result.Plan = plan
		for _, t := range created {
			result.Tasks = append(result.Tasks, *t)
		}
		return nil
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		log.Error("failed to generate plan", slog.String("error", err.Error()))
		return nil, NewServiceError("generate_plan", "failed to store generated plan", err)
	}

	log.Info("generated study plan",
		slog.String("plan_id", result.Plan.ID.String()),
		slog.Bool("reused", result.Reused),
		slog.Int("tasks", len(result.Tasks)))
	return result, nil
}

func validateGenerateRequest(req GenerateRequest) error {
	switch req.Mode {
	case domain.ModeCurriculum:
	case domain.ModeDescription:
		if strings.TrimSpace(req.Description) == "" {
			return domain.NewValidationError("description", "description is required")
		}
	default:
		return domain.NewValidationError("mode", "mode must be curriculum or description")
	}
	if req.DurationDays < 0 || req.DurationDays > planner.MaxDescriptionDays {
		return domain.NewValidationError("duration_days",
			fmt.Sprintf("duration must be between 0 and %d days", planner.MaxDescriptionDays))
	}
	return nil
}

// prepare reads the goal and curriculum and runs the allocator. It writes nothing.
func (s *planServiceImpl) prepare(
	ctx context.Context,
	userID uuid.UUID,
	req GenerateRequest,
	today time.Time,
) (*generationPlan, error) {
	goal, err := s.deps.Goals.GetActive(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, NewServiceError("generate_plan", "failed to load goal", err)
		}
		goal = nil
	}

	index, err := loadIndex(ctx, s.deps.Curriculum, userID)
	if err != nil {
		return nil, NewServiceError("generate_plan", "failed to load curriculum", err)
	}

	gp := &generationPlan{mode: req.Mode}
	if goal != nil {
		gp.goalID = &goal.ID
	}

	var src planner.Source
	var budget planner.Budget

	switch req.Mode {
	case domain.ModeCurriculum:
		if goal == nil {
			return nil, ErrNoActiveGoal
		}
		if goal.Deadline == nil {
			return nil, domain.NewValidationError("deadline", "curriculum plans need a goal with a deadline")
		}
		if goal.Deadline.Before(today) {
			return nil, domain.NewValidationError("deadline", "the goal's deadline has already passed")
		}
		src = planner.CurriculumSource{Index: *index, InScope: goal.InScope}
		budget = planner.MinuteBudget{
			DailyMinutes:      goal.DailyMinutes(),
			DaysUntilDeadline: domain.DaysBetween(today, *goal.Deadline),
		}
		gp.endDate = goal.Deadline

	case domain.ModeDescription:
		desc, err := s.ParseDescription(ctx, req.Description)
		if err != nil {
			return nil, err
		}
		desc.Subjects = linkSubjects(desc.Subjects, index)
		horizon := s.descriptionHorizon(req, desc, goal, today)
		src = desc
		budget = planner.CountBudget{AvailableDays: horizon, MaxPerDay: s.params.MaxTasksPerDay}
		gp.endDate = datePtr(domain.AddDays(today, horizon-1))
	}

	units, err := planner.GenerateUnits(src, s.params)
	if err != nil {
		return nil, NewServiceError("generate_plan", "failed to derive work units", err)
	}
	gp.alloc, err = planner.Allocate(units, budget, today)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidDailyBudget) {
			return nil, domain.NewValidationError("hours_per_day", "daily study time is too small to schedule anything")
		}
		return nil, NewServiceError("generate_plan", "failed to allocate work units", err)
	}

	if last, ok := gp.alloc.LastDate(); ok && gp.endDate != nil && last.After(*gp.endDate) {
		gp.endDate = datePtr(last)
	}
	return gp, nil
}

// descriptionHorizon picks the number of days a description plan spans: the
// request, then the description itself, then the goal deadline, then the default.
func (s *planServiceImpl) descriptionHorizon(
	req GenerateRequest,
	desc planner.DescriptionSource,
	goal *domain.Goal,
	today time.Time,
) int {
	switch {
	case req.DurationDays > 0:
		return req.DurationDays
	case desc.DurationDays > 0:
		return desc.DurationDays
	case goal != nil && goal.Deadline != nil && domain.DaysBetween(today, *goal.Deadline) > 0:
		return domain.DaysBetween(today, *goal.Deadline)
	case s.deps.Planner.DefaultDescriptionDays > 0:
		return s.deps.Planner.DefaultDescriptionDays
	default:
		return defaultDescriptionDays
	}
}

// linkSubjects attaches the user's subject IDs by case-insensitive name. IDs the
// user does not own are cleared.
func linkSubjects(subjects []planner.SubjectSessions, index *domain.CurriculumIndex) []planner.SubjectSessions {
	byName := make(map[string]uuid.UUID, len(index.Subjects))
	owned := make(map[uuid.UUID]bool, len(index.Subjects))
	for _, sub := range index.Subjects {
		byName[strings.ToLower(sub.Name)] = sub.ID
		owned[sub.ID] = true
	}

	out := make([]planner.SubjectSessions, len(subjects))
	for i, sub := range subjects {
		if sub.SubjectID != nil && !owned[*sub.SubjectID] {
			sub.SubjectID = nil
		}
		if sub.SubjectID == nil {
			if id, ok := byName[strings.ToLower(sub.Name)]; ok {
				sub.SubjectID = &id
			}
		}
		out[i] = sub
	}
	return out
}

// orderOffsets returns, per date from today on, the first order index not used
// by a task that survived regeneration.
func orderOffsets(
	ctx context.Context,
	tasks store.PlanTaskStore,
	planID uuid.UUID,
	today time.Time,
) (map[time.Time]int, error) {
	surviving, err := tasks.Find(ctx, store.TaskFilter{PlanID: planID, From: &today})
	if err != nil {
		return nil, err
	}
	offsets := make(map[time.Time]int)
	for _, t := range surviving {
		date := domain.DateOf(t.ScheduledDate, time.UTC)
		if next := t.OrderIndex + 1; next > offsets[date] {
			offsets[date] = next
		}
	}
	return offsets, nil
}

// ParseDescription implements PlanService.
func (s *planServiceImpl) ParseDescription(
	ctx context.Context,
	description string,
) (planner.DescriptionSource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	text := strings.TrimSpace(description)
	if text == "" {
		return planner.DescriptionSource{}, domain.NewValidationError("description", "description is required")
	}
	if len(text) > MaxDescriptionLength {
		return planner.DescriptionSource{}, domain.NewValidationError("description",
			fmt.Sprintf("description cannot exceed %d characters", MaxDescriptionLength))
	}

	if timeout := time.Duration(s.deps.LLM.ParseTimeoutSeconds) * time.Second; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	raw, err := s.deps.Generator.Generate(ctx,
		generation.SystemAndUser(descriptionPrompt, text),
		generation.Options{JSON: true})
	if err != nil {
		log.Warn("description parsing failed", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, generation.ErrGenerationUnavailable):
			return planner.DescriptionSource{}, err
		case errors.Is(err, generation.ErrTransientFailure):
			return planner.DescriptionSource{}, fmt.Errorf("%w: %w", generation.ErrGenerationUnavailable, err)
		}
		return planner.DescriptionSource{}, fmt.Errorf("%w: %w", ErrDescriptionUnparseable, err)
	}

	src, err := planner.ParseDescriptionJSON(raw)
	if err != nil {
		log.Warn("description response rejected", slog.String("error", err.Error()))
		return planner.DescriptionSource{}, fmt.Errorf("%w: %w", ErrDescriptionUnparseable, err)
	}
	return src, nil
}

// CreateManualPlan implements PlanService.
func (s *planServiceImpl) CreateManualPlan(
	ctx context.Context,
	userID uuid.UUID,
	req ManualPlanRequest,
) (*domain.StudyPlan, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	today := s.deps.today()
	start := today
	if req.StartDate != nil {
		start = domain.DateOf(*req.StartDate, time.UTC)
		if start.Before(today) {
			return nil, domain.NewValidationError("start_date", "start date cannot be in the past")
		}
	}

	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	var goalID *uuid.UUID
	if goal, err := s.deps.Goals.GetActive(ctx, userID); err == nil {
		goalID = &goal.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, NewServiceError("create_manual_plan", "failed to load goal", err)
	}

	plan, err := domain.NewStudyPlan(userID, goalID, start, req.EndDate, domain.ModeManual)
	if err != nil {
		return nil, err
	}

	err = s.deps.Transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		plans := s.deps.Plans.WithTx(tx)
		if err := abandonActive(ctx, plans, userID); err != nil {
			return err
		}
		return plans.Create(ctx, plan)
	})
	if err != nil {
		log.Error("failed to create manual plan", slog.String("error", err.Error()))
		return nil, NewServiceError("create_manual_plan", "failed to create plan", err)
	}

	log.Info("created manual plan", slog.String("plan_id", plan.ID.String()))
	return plan, nil
}

// abandonActive abandons the user's active plan if there is one.
func abandonActive(ctx context.Context, plans store.PlanStore, userID uuid.UUID) error {
	active, err := plans.GetActiveForUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := active.Abandon(); err != nil {
		return err
	}
	return plans.Update(ctx, active)
}

// GetActivePlan implements PlanService.
func (s *planServiceImpl) GetActivePlan(ctx context.Context, userID uuid.UUID) (*PlanView, error) {
	plan, err := s.deps.Plans.GetActiveForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, NewServiceError("get_active_plan", "failed to load plan", err)
	}

	tasks, err := s.deps.Tasks.Find(ctx, store.TaskFilter{PlanID: plan.ID})
	if err != nil {
		return nil, NewServiceError("get_active_plan", "failed to load tasks", err)
	}
	return &PlanView{Plan: plan, Tasks: tasks}, nil
}

// AbandonActivePlan implements PlanService.
func (s *planServiceImpl) AbandonActivePlan(ctx context.Context, userID uuid.UUID) (*domain.StudyPlan, error) {
	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	plan, err := s.deps.Plans.GetActiveForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, NewServiceError("abandon_plan", "failed to load plan", err)
	}
	if err := plan.Abandon(); err != nil {
		return nil, err
	}
	if err := s.deps.Plans.Update(ctx, plan); err != nil {
		return nil, NewServiceError("abandon_plan", "failed to update plan", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("abandoned study plan",
		slog.String("user_id", userID.String()),
		slog.String("plan_id", plan.ID.String()))
	return plan, nil
}

// CompletePlan implements PlanService.
func (s *planServiceImpl) CompletePlan(ctx context.Context, userID, planID uuid.UUID) (*domain.StudyPlan, error) {
	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	plan, err := ownedPlan(ctx, s.deps.Plans, userID, planID)
	if err != nil {
		return nil, NewServiceError("complete_plan", "failed to load plan", err)
	}
	if err := plan.Complete(); err != nil {
		return nil, err
	}
	if err := s.deps.Plans.Update(ctx, plan); err != nil {
		return nil, NewServiceError("complete_plan", "failed to update plan", err)
	}
	return plan, nil
}

// ownedPlan loads planID and checks it belongs to userID.
func ownedPlan(ctx context.Context, plans store.PlanStore, userID, planID uuid.UUID) (*domain.StudyPlan, error) {
	plan, err := plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrNotOwned
	}
	return plan, nil
}

// AddManualTask implements PlanService.
func (s *planServiceImpl) AddManualTask(
	ctx context.Context,
	userID, planID uuid.UUID,
	req ManualTaskRequest,
) (*domain.PlanTask, error) {
	if req.Kind == "" {
		req.Kind = domain.TaskKindSession
	}
	if req.Priority < 0 {
		return nil, domain.NewValidationError("priority", "priority cannot be negative")
	}

	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	plan, err := ownedPlan(ctx, s.deps.Plans, userID, planID)
	if err != nil {
		return nil, NewServiceError("add_manual_task", "failed to load plan", err)
	}
	if !plan.IsActive() {
		return nil, ErrPlanNotActive
	}
	if plan.Mode != domain.ModeManual {
		return nil, ErrNotManualPlan
	}

	date := domain.DateOf(req.Date, time.UTC)
	if date.Before(plan.StartDate) {
		return nil, domain.NewValidationError("date", "task date cannot be before the plan starts")
	}

	subjectName := ""
	if req.SubjectID != nil {
		index, err := loadIndex(ctx, s.deps.Curriculum, userID)
		if err != nil {
			return nil, NewServiceError("add_manual_task", "failed to load curriculum", err)
		}
		if subjectName = index.SubjectName(*req.SubjectID); subjectName == "" {
			return nil, ErrSubjectNotFound
		}
	}

	sameDay, err := s.deps.Tasks.Find(ctx, store.TaskFilter{PlanID: plan.ID, From: &date, To: &date})
	if err != nil {
		return nil, NewServiceError("add_manual_task", "failed to load tasks", err)
	}
	order := 0
	for _, t := range sameDay {
		if t.OrderIndex >= order {
			order = t.OrderIndex + 1
		}
	}

	task, err := domain.NewPlanTask(plan.ID, req.SubjectID, subjectName, req.Title, req.Kind,
		date, req.DurationMinutes, req.Priority, order)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Tasks.CreateBatch(ctx, []*domain.PlanTask{task}); err != nil {
		return nil, NewServiceError("add_manual_task", "failed to save task", err)
	}
	return task, nil
}
