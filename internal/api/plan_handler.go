package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/service"
)

// PlanHandler serves study plan lifecycle requests.
type PlanHandler struct {
	planService service.PlanService
	taskService service.TaskService
	logger      *slog.Logger
}

// NewPlanHandler creates a PlanHandler.
func NewPlanHandler(
	planService service.PlanService,
	taskService service.TaskService,
	logger *slog.Logger,
) *PlanHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PlanHandler")
	}
	return &PlanHandler{
		planService: planService,
		taskService: taskService,
		logger:      logger.With(slog.String("component", "plan_handler")),
	}
}

// GeneratePlan handles POST /plans/generate.
func (h *PlanHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req GeneratePlanRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	res, err := h.planService.GeneratePlan(r.Context(), userID, service.GenerateRequest{
		Mode:         domain.GenerationMode(req.Mode),
		Description:  req.Description,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("plan generated",
		slog.String("plan_id", res.Plan.ID.String()),
		slog.String("mode", req.Mode),
		slog.Int("tasks", len(res.Tasks)),
		slog.Int("dropped_units", len(res.DroppedUnits)),
		slog.Bool("reused", res.Reused))

	status := http.StatusCreated
	if res.Reused {
		status = http.StatusOK
	}
	shared.RespondWithJSON(w, r, status, generateToResponse(res))
}

// ParseDescription handles POST /plans/parse-description. It previews how a
// description would be read without touching any plan.
func (h *PlanHandler) ParseDescription(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req ParseDescriptionRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	src, err := h.planService.ParseDescription(r.Context(), req.Description)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, src)
}

// CreateManualPlan handles POST /plans/manual.
func (h *PlanHandler) CreateManualPlan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ManualPlanRequest
	if !decodeAndValidate(w, r, &req, true) {
		return
	}
	start, err := shared.ParseOptionalDate(req.StartDate)
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}
	end, err := shared.ParseOptionalDate(req.EndDate)
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	plan, err := h.planService.CreateManualPlan(r.Context(), userID, service.ManualPlanRequest{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("manual plan created", slog.String("plan_id", plan.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, planToResponse(plan))
}

// GetActivePlan handles GET /plans/active.
func (h *PlanHandler) GetActivePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.planService.GetActivePlan(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PlanViewResponse{
		Plan:  planToResponse(view.Plan),
		Tasks: tasksToResponse(view.Tasks),
	})
}

// AbandonActivePlan handles POST /plans/active/abandon.
func (h *PlanHandler) AbandonActivePlan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	plan, err := h.planService.AbandonActivePlan(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("plan abandoned", slog.String("plan_id", plan.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, planToResponse(plan))
}

// CompletePlan handles POST /plans/{planID}/complete.
func (h *PlanHandler) CompletePlan(w http.ResponseWriter, r *http.Request) {
	userID, planID, ok := handleUserIDAndPathUUID(w, r, "planID")
	if !ok {
		return
	}

	plan, err := h.planService.CompletePlan(r.Context(), userID, planID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, planToResponse(plan))
}

// AddManualTask handles POST /plans/{planID}/tasks.
func (h *PlanHandler) AddManualTask(w http.ResponseWriter, r *http.Request) {
	userID, planID, ok := handleUserIDAndPathUUID(w, r, "planID")
	if !ok {
		return
	}

	var req ManualTaskRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	task, err := h.planService.AddManualTask(r.Context(), userID, planID, service.ManualTaskRequest{
		SubjectID:       req.SubjectID,
		Title:           req.Title,
		Kind:            domain.TaskKind(req.Kind),
		Date:            date,
		DurationMinutes: req.DurationMinutes,
		Priority:        req.Priority,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /plans/{planID}/tasks?from=&to=&status=.
// status may repeat.
func (h *PlanHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, planID, ok := handleUserIDAndPathUUID(w, r, "planID")
	if !ok {
		return
	}

	q := r.URL.Query()
	var rng service.TaskRange
	var err error
	if rng.From, err = parseQueryDate(q.Get("from"), "from"); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if rng.To, err = parseQueryDate(q.Get("to"), "to"); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	for _, s := range q["status"] {
		rng.Statuses = append(rng.Statuses, domain.TaskStatus(s))
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, planID, rng)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// RescheduleOverdue handles POST /plans/{planID}/reschedule-overdue.
func (h *PlanHandler) RescheduleOverdue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, planID, ok := handleUserIDAndPathUUID(w, r, "planID")
	if !ok {
		return
	}

	moved, err := h.taskService.RescheduleOverdue(r.Context(), userID, planID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("overdue tasks rescheduled",
		slog.String("plan_id", planID.String()),
		slog.Int64("moved", moved))
	shared.RespondWithJSON(w, r, http.StatusOK, RescheduleOverdueResponse{Moved: moved})
}

func parseQueryDate(value, field string) (*time.Time, error) {
	d, err := shared.ParseOptionalDate(value)
	if err != nil {
		return nil, domain.NewValidationError(field, "expected YYYY-MM-DD")
	}
	return d, nil
}
