package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/service"
)

// StatusHandler serves the progress view of the active plan.
type StatusHandler struct {
	statusService service.StatusService
	logger        *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(statusService service.StatusService, logger *slog.Logger) *StatusHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StatusHandler")
	}
	return &StatusHandler{
		statusService: statusService,
		logger:        logger.With(slog.String("component", "status_handler")),
	}
}

// GetStatus handles GET /status.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	st, err := h.statusService.GetStatus(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, statusToResponse(st))
}
