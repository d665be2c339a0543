package service

import (
	"context"
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

// maxNarrativeLength rejects generated narratives that ramble.
const maxNarrativeLength = 1200

// Narrative sources
const (
	NarrativeGenerated = "generated"
	NarrativeFallback  = "fallback"
)

// Status is the progress view of the active plan.
type Status struct {
	Plan            *domain.StudyPlan `json:"plan"`
	Goal            *domain.Goal      `json:"goal,omitempty"`
	Summary         planner.Summary   `json:"summary"`
	Narrative       string            `json:"narrative"`
	NarrativeSource string            `json:"narrative_source"`
}

// StatusService reports schedule progress.
type StatusService interface {
	// GetStatus summarizes the active plan as of today and attaches a short
	// narrative. Narrative failures never fail the call.
	GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error)
}

type statusServiceImpl struct {
	deps   Deps
	logger *slog.Logger
}

var _ StatusService = (*statusServiceImpl)(nil)

// NewStatusService creates a StatusService. It needs the goal, plan and task
// stores; a nil Generator means every narrative uses the fallback text.
func NewStatusService(deps Deps) (StatusService, error) {
	if err := deps.require("status_service", "goals", "plans", "tasks"); err != nil {
		return nil, err
	}
	return &statusServiceImpl{
		deps:   deps,
		logger: deps.Logger.With(slog.String("component", "status_service")),
	}, nil
}

// GetStatus implements StatusService.
func (s *statusServiceImpl) GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error) {
	plan, err := s.deps.Plans.GetActiveForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, NewServiceError("get_status", "failed to load plan", err)
	}

	tasks, err := s.deps.Tasks.Find(ctx, store.TaskFilter{PlanID: plan.ID})
	if err != nil {
		return nil, NewServiceError("get_status", "failed to load tasks", err)
	}

	var goal *domain.Goal
	var deadline *time.Time
	if plan.GoalID != nil {
		goal, err = s.deps.Goals.GetByID(ctx, *plan.GoalID)
		switch {
		case err == nil:
			deadline = goal.Deadline
		case errors.Is(err, store.ErrNotFound):
			goal = nil
		default:
			return nil, NewServiceError("get_status", "failed to load goal", err)
		}
	}

	today := s.deps.today()
	summary := planner.Summarize(tasks, deadline, today)
	narrative, source := s.narrative(ctx, summary, goal)

	return &Status{
		Plan:            plan,
		Goal:            goal,
		Summary:         summary,
		Narrative:       narrative,
		NarrativeSource: source,
	}, nil
}

// narrative asks the generator for a status message and falls back to the
// local template on any failure.
func (s *statusServiceImpl) narrative(ctx context.Context, summary planner.Summary, goal *domain.Goal) (string, string) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if timeout := time.Duration(s.deps.LLM.NarrativeTimeoutSeconds) * time.Second; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := s.deps.Generator.Generate(ctx,
		generation.SystemAndUser(narrativePrompt, describeProgress(summary, goal)),
		generation.Options{
			MaxTokens:   s.deps.LLM.NarrativeMaxTokens,
			Temperature: float32(s.deps.LLM.NarrativeTemperature),
		})
	if err == nil {
		text = strings.TrimSpace(text)
		switch {
		case text == "":
			err = generation.ErrInvalidResponse
		case len(text) > maxNarrativeLength:
			err = fmt.Errorf("%w: narrative too long", generation.ErrInvalidResponse)
		}
	}
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, generation.ErrGenerationUnavailable) {
			level = slog.LevelDebug
		}
		log.Log(ctx, level, "using fallback narrative", slog.String("error", err.Error()))
		return planner.FallbackNarrative(summary), NarrativeFallback
	}
	return text, NarrativeGenerated
}

// describeProgress renders the summary as the user turn of the narrative prompt.
func describeProgress(s planner.Summary, goal *domain.Goal) string {
	var b strings.Builder
	if goal != nil {
		fmt.Fprintf(&b, "Goal: %s\n", goal.Title)
	}
	fmt.Fprintf(&b, "Days until deadline: %d\n", s.DaysLeft)
	fmt.Fprintf(&b, "Tasks: %d total, %d completed, %d skipped, %d overdue\n",
		s.TotalTasks, s.CompletedTasks, s.SkippedTasks, s.OverdueTasks)
	fmt.Fprintf(&b, "Completion: %d%%\n", s.CompletionPct)
	if len(s.TodayTasks) == 0 {
		b.WriteString("Nothing is scheduled today.\n")
		return b.String()
	}
	b.WriteString("Today:\n")
	for _, t := range s.TodayTasks {
		fmt.Fprintf(&b, "- %s (%d min, %s)\n", t.Title, t.DurationMinutes, t.Status)
	}
	return b.String()
}
