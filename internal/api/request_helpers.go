package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/api/shared"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/platform/logger"
	"github.com/phrazzld/studyplan-api/internal/service/auth"
)

// getUserIDFromContext returns the user placed in the context by the auth middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathUUID parses the chi path parameter paramName as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format")
	}
	return id, nil
}

// requireUser writes a 401 and returns false when the request is unauthenticated.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		logger.FromContext(r.Context()).Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, auth.ErrMissingToken)
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID extracts the user ID and the path UUID paramName,
// writing an error response when either is missing.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		logger.FromContext(r.Context()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, pathID, true
}

// decodeAndValidate decodes the body into dst and validates it. It writes a 400
// and returns false on failure. When optional is set an empty body is accepted.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	if err := shared.DecodeJSON(w, r, dst); err != nil {
		if !(optional && errors.Is(err, shared.ErrEmptyBody)) {
			respondBadRequest(w, r, err)
			return false
		}
	}
	if err := shared.ValidateRequest(dst); err != nil {
		respondBadRequest(w, r, err)
		return false
	}
	return true
}
