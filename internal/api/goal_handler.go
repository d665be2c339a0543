package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/service"
)

// GoalHandler serves the learner's active goal.
type GoalHandler struct {
	goalService service.GoalService
	logger      *slog.Logger
}

// NewGoalHandler creates a GoalHandler.
func NewGoalHandler(goalService service.GoalService, logger *slog.Logger) *GoalHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GoalHandler")
	}
	return &GoalHandler{
		goalService: goalService,
		logger:      logger.With(slog.String("component", "goal_handler")),
	}
}

// SaveGoal handles PUT /goal. The new goal replaces the active one.
func (h *GoalHandler) SaveGoal(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SaveGoalRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	deadline, err := shared.ParseOptionalDate(req.Deadline)
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	goal, err := h.goalService.SaveGoal(r.Context(), userID, service.SaveGoalRequest{
		Title:       req.Title,
		Deadline:    deadline,
		HoursPerDay: req.HoursPerDay,
		SubjectIDs:  req.SubjectIDs,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("goal saved", slog.String("goal_id", goal.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, goalToResponse(goal))
}

// GetGoal handles GET /goal.
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	goal, err := h.goalService.GetActiveGoal(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goalToResponse(goal))
}
