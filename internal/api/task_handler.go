package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/service"
)

// TaskHandler serves status changes of single plan tasks.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CompleteTask handles POST /tasks/{taskID}/complete. The body is optional.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req CompleteTaskRequest
	if !decodeAndValidate(w, r, &req, true) {
		return
	}

	task, err := h.taskService.CompleteTask(r.Context(), userID, taskID, req.ActualMinutes)
	h.respond(w, r, "completed", task, err)
}

// ResetTask handles POST /tasks/{taskID}/reset.
func (h *TaskHandler) ResetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}
	task, err := h.taskService.ResetTask(r.Context(), userID, taskID)
	h.respond(w, r, "reset", task, err)
}

// SkipTask handles POST /tasks/{taskID}/skip.
func (h *TaskHandler) SkipTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}
	task, err := h.taskService.SkipTask(r.Context(), userID, taskID)
	h.respond(w, r, "skipped", task, err)
}

// RescheduleTask handles POST /tasks/{taskID}/reschedule.
func (h *TaskHandler) RescheduleTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req RescheduleTaskRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	task, err := h.taskService.RescheduleTask(r.Context(), userID, taskID, date)
	h.respond(w, r, "rescheduled", task, err)
}

func (h *TaskHandler) respond(w http.ResponseWriter, r *http.Request, action string, task *domain.PlanTask, err error) {
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task "+action,
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
