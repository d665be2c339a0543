package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/generation"
	"github.com/phrazzld/studyplan-api/internal/service"
	"github.com/phrazzld/studyplan-api/internal/service/auth"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// MapErrorToStatusCode maps service and domain errors to HTTP status codes
// without leaking their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	case errors.Is(err, service.ErrNoActiveGoal),
		errors.Is(err, service.ErrNoActivePlan),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrPlanNotActive),
		errors.Is(err, service.ErrNotManualPlan),
		errors.Is(err, service.ErrDuplicateSubject),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrDescriptionUnparseable):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrGenerationUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err. Validation
// messages are written for users and pass through unchanged.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not have access to this resource"

	case errors.Is(err, service.ErrNoActiveGoal):
		return "No active goal"
	case errors.Is(err, service.ErrNoActivePlan):
		return "No active plan"
	case errors.Is(err, service.ErrPlanNotFound):
		return "Plan not found"
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, service.ErrItemNotFound):
		return "Curriculum item not found"
	case errors.Is(err, service.ErrSubjectNotFound):
		return "Subject not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, domain.ErrPlanTransition):
		return "Plan is no longer active"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "Task cannot change to that status"
	case errors.Is(err, service.ErrPlanNotActive):
		return "Plan is not active"
	case errors.Is(err, service.ErrNotManualPlan):
		return "Tasks can only be added to manual plans"
	case errors.Is(err, service.ErrDuplicateSubject):
		return "Subject already exists"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, store.ErrInvalidEntity), errors.Is(err, domain.ErrValidation):
		return "Invalid request"

	case errors.Is(err, service.ErrDescriptionUnparseable):
		return "Could not understand the plan description"
	case errors.Is(err, generation.ErrGenerationUnavailable):
		return "Plan generation is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns request validation failures into a message
// naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if strings.Contains(err.Error(), "unknown field") {
		return "Request contains an unknown field"
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_if":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "date":
		return "expected YYYY-MM-DD"
	case "uuid":
		return "invalid ID format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the redacted cause.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// respondBadRequest answers a body that failed to decode or validate.
func respondBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	msg := SanitizeValidationError(err)
	if errors.Is(err, shared.ErrEmptyBody) {
		msg = GetSafeErrorMessage(err)
	} else if msg == "Validation error" {
		msg = "Invalid request format"
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msg, err)
}
