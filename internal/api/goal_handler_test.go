package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/mocks"
	"github.com/phrazzld/studyplan-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGoalHandler_SaveGoal(t *testing.T) {
	userID := uuid.New()
	subjectID := uuid.New()
	deadline := date(2026, 6, 1)

	svc := new(mocks.MockGoalService)
	svc.On("SaveGoal", mock.Anything, userID, mock.MatchedBy(func(req service.SaveGoalRequest) bool {
		return req.Title == "Finals" &&
			req.Deadline != nil && req.Deadline.Equal(deadline) &&
			req.HoursPerDay == 2.5 &&
			len(req.SubjectIDs) == 1 && req.SubjectIDs[0] == subjectID
	})).Return(&domain.Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       "Finals",
		Deadline:    &deadline,
		HoursPerDay: 2.5,
		SubjectIDs:  []uuid.UUID{subjectID},
		Active:      true,
	}, nil)

	h := NewGoalHandler(svc, testLogger)
	body := `{"title":"Finals","deadline":"2026-06-01","hours_per_day":2.5,"subject_ids":["` + subjectID.String() + `"]}`
	rec := serve(t, http.MethodPut, "/goal", "/goal", h.SaveGoal, body, userID)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[GoalResponse](t, rec)
	assert.Equal(t, "Finals", resp.Title)
	require.NotNil(t, resp.Deadline)
	assert.Equal(t, "2026-06-01", *resp.Deadline)
	assert.True(t, resp.Active)
	svc.AssertExpectations(t)
}

func TestGoalHandler_SaveGoal_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty body", "", "Request body is required"},
		{"missing title", `{"hours_per_day":2}`, "Invalid title: required field"},
		{"zero hours", `{"title":"x","hours_per_day":0}`, "Invalid hours_per_day: too small"},
		{"too many hours", `{"title":"x","hours_per_day":25}`, "Invalid hours_per_day: too large"},
		{"bad deadline", `{"title":"x","hours_per_day":1,"deadline":"June 1"}`, "Invalid deadline: expected YYYY-MM-DD"},
		{"unknown field", `{"title":"x","hours_per_day":1,"color":"red"}`, "Request contains an unknown field"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mocks.MockGoalService)
			h := NewGoalHandler(svc, testLogger)
			rec := serve(t, http.MethodPut, "/goal", "/goal", h.SaveGoal, tc.body, uuid.New())

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, errorMessage(t, rec))
			svc.AssertNotCalled(t, "SaveGoal", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGoalHandler_SaveGoal_ServiceValidation(t *testing.T) {
	userID := uuid.New()
	svc := new(mocks.MockGoalService)
	svc.On("SaveGoal", mock.Anything, userID, mock.Anything).
		Return(nil, domain.NewValidationError("subject_ids", "unknown subject"))

	h := NewGoalHandler(svc, testLogger)
	rec := serve(t, http.MethodPut, "/goal", "/goal", h.SaveGoal, `{"title":"x","hours_per_day":1}`, userID)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "subject_ids: unknown subject", errorMessage(t, rec))
}

func TestGoalHandler_GetGoal(t *testing.T) {
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := new(mocks.MockGoalService)
		svc.On("GetActiveGoal", mock.Anything, userID).
			Return(&domain.Goal{ID: uuid.New(), Title: "Boards", HoursPerDay: 1, Active: true}, nil)

		rec := serve(t, http.MethodGet, "/goal", "/goal", NewGoalHandler(svc, testLogger).GetGoal, "", userID)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[GoalResponse](t, rec)
		assert.Equal(t, "Boards", resp.Title)
		assert.Nil(t, resp.Deadline)
		assert.Empty(t, resp.SubjectIDs)
	})

	t.Run("none", func(t *testing.T) {
		svc := new(mocks.MockGoalService)
		svc.On("GetActiveGoal", mock.Anything, userID).Return(nil, service.ErrNoActiveGoal)

		rec := serve(t, http.MethodGet, "/goal", "/goal", NewGoalHandler(svc, testLogger).GetGoal, "", userID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No active goal", errorMessage(t, rec))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := new(mocks.MockGoalService)
		rec := serve(t, http.MethodGet, "/goal", "/goal", NewGoalHandler(svc, testLogger).GetGoal, "", uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestNewGoalHandler_NilLogger(t *testing.T) {
	assert.Panics(t, func() { NewGoalHandler(new(mocks.MockGoalService), nil) })
}
