package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/service"
)

// CurriculumHandler serves subjects and curriculum items.
type CurriculumHandler struct {
	curriculumService service.CurriculumService
	logger            *slog.Logger
}

// NewCurriculumHandler creates a CurriculumHandler.
func NewCurriculumHandler(curriculumService service.CurriculumService, logger *slog.Logger) *CurriculumHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CurriculumHandler")
	}
	return &CurriculumHandler{
		curriculumService: curriculumService,
		logger:            logger.With(slog.String("component", "curriculum_handler")),
	}
}

// GetCurriculum handles GET /curriculum.
func (h *CurriculumHandler) GetCurriculum(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	index, err := h.curriculumService.Index(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, curriculumToResponse(index))
}

// CreateSubject handles POST /subjects.
func (h *CurriculumHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateSubjectRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	subject, err := h.curriculumService.AddSubject(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("subject created", slog.String("subject_id", subject.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, SubjectResponse{
		ID:         subject.ID,
		Name:       subject.Name,
		Objectives: []ItemResponse{},
	})
}

// CreateItem handles POST /curriculum/items.
func (h *CurriculumHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateItemRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	item, err := h.curriculumService.AddItem(r.Context(), userID, service.AddItemRequest{
		SubjectID: req.SubjectID,
		ParentID:  req.ParentID,
		Title:     req.Title,
		Position:  req.Position,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// UpdateItemFlags handles PATCH /curriculum/items/{itemID}. Absent flags are
// left as they are.
func (h *CurriculumHandler) UpdateItemFlags(w http.ResponseWriter, r *http.Request) {
	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "itemID")
	if !ok {
		return
	}

	var req UpdateItemFlagsRequest
	if !decodeAndValidate(w, r, &req, false) {
		return
	}

	item, err := h.curriculumService.SetItemFlags(r.Context(), userID, itemID, domain.Flags{
		Studied:  req.Studied,
		Reviewed: req.Reviewed,
		Solved:   req.Solved,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}
