package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/generation"
	"github.com/phrazzld/studyplan-api/internal/service"
	"github.com/phrazzld/studyplan-api/internal/service/auth"
	"github.com/phrazzld/studyplan-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"no active goal", service.ErrNoActiveGoal, http.StatusNotFound},
		{"no active plan", service.ErrNoActivePlan, http.StatusNotFound},
		{"task not found", service.ErrTaskNotFound, http.StatusNotFound},
		{"raw store not found", store.ErrGoalNotFound, http.StatusNotFound},
		{"invalid transition", fmt.Errorf("skip: %w", domain.ErrInvalidTransition), http.StatusConflict},
		{"plan transition", domain.ErrPlanTransition, http.StatusConflict},
		{"plan not active", service.ErrPlanNotActive, http.StatusConflict},
		{"not manual", service.ErrNotManualPlan, http.StatusConflict},
		{"duplicate subject", service.ErrDuplicateSubject, http.StatusConflict},
		{"validation", domain.NewValidationError("title", "title is required"), http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"unparseable", service.ErrDescriptionUnparseable, http.StatusUnprocessableEntity},
		{"generation unavailable", generation.ErrGenerationUnavailable, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"wrapped in service error",
			service.NewServiceError("generate plan", "failed to save tasks",
				fmt.Errorf("tx: %w", store.ErrInvalidEntity)),
			http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(errors.New("pq: relation study_tasks does not exist")))

	verr := domain.NewValidationError("deadline", "deadline cannot be in the past")
	assert.Equal(t, "deadline: deadline cannot be in the past",
		GetSafeErrorMessage(fmt.Errorf("save goal: %w", verr)))

	assert.Equal(t, "Plan is not active", GetSafeErrorMessage(service.ErrPlanNotActive))
	assert.Equal(t, "Plan is no longer active", GetSafeErrorMessage(domain.ErrPlanTransition))
	assert.Equal(t, "Task cannot change to that status",
		GetSafeErrorMessage(fmt.Errorf("skip: %w", domain.ErrInvalidTransition)))
	assert.Equal(t, "Plan generation is temporarily unavailable",
		GetSafeErrorMessage(fmt.Errorf("parse: %w", generation.ErrGenerationUnavailable)))
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(&GeneratePlanRequest{Mode: "vibes"})
	assert.Equal(t, "Invalid mode: invalid value", SanitizeValidationError(err))

	err = shared.ValidateRequest(&GeneratePlanRequest{Mode: "description"})
	assert.Equal(t, "Invalid description: required field", SanitizeValidationError(err))

	err = shared.ValidateRequest(&RescheduleTaskRequest{Date: "tomorrow"})
	assert.Equal(t, "Invalid date: expected YYYY-MM-DD", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("weird")))
}
