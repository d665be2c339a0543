package shared

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type for request-scoped values set by the API layer.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated user's uuid.UUID.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDHeader is echoed on every response and accepted from callers.
	TraceIDHeader = "X-Trace-ID"
)

var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

// SetTraceID stores a trace ID in ctx. A caller-supplied ID is kept when it
// looks sane, otherwise a fresh one is generated.
func SetTraceID(ctx context.Context, incoming string) context.Context {
	id := strings.TrimSpace(incoming)
	if !traceIDPattern.MatchString(id) {
		id = NewTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, id)
}

// GetTraceID returns the trace ID from ctx, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// NewTraceID returns a 32-character hex ID.
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithUserID stores the authenticated user ID in ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
