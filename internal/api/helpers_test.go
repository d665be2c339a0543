package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// serve routes one request through a chi router holding only pattern. A
// non-nil userID is placed in the context as the auth middleware would.
func serve(
	t *testing.T,
	method, pattern, path string,
	handler http.HandlerFunc,
	body string,
	userID uuid.UUID,
) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != uuid.Nil {
				req = req.WithContext(shared.WithUserID(req.Context(), userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Method(method, pattern, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rec).Error
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func samplePlan(userID uuid.UUID, mode domain.GenerationMode) *domain.StudyPlan {
	end := date(2026, 5, 20)
	return &domain.StudyPlan{
		ID:        uuid.New(),
		UserID:    userID,
		StartDate: date(2026, 5, 6),
		EndDate:   &end,
		Status:    domain.PlanStatusActive,
		Mode:      mode,
	}
}

func sampleTask(planID uuid.UUID, status domain.TaskStatus) *domain.PlanTask {
	return &domain.PlanTask{
		ID:              uuid.New(),
		PlanID:          planID,
		SubjectName:     "Math",
		Title:           "Study: Limits",
		Kind:            domain.TaskKindStudy,
		ScheduledDate:   date(2026, 5, 7),
		DurationMinutes: 45,
		Status:          status,
		Priority:        3,
	}
}
