package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/studyplan-api/internal/platform/postgres"
	"github.com/phrazzld/studyplan-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "plan_tasks",
		ColumnName:     "title",
		ConstraintName: "plan_tasks_title_check",
	}
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	other := errors.New("boom")
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", newPgError("23505"), store.ErrDuplicate},
		{"foreign key violation", newPgError("23503"), store.ErrInvalidEntity},
		{"check violation", newPgError("23514"), store.ErrInvalidEntity},
		{"not null violation", newPgError("23502"), store.ErrInvalidEntity},
		{"wrapped pg error", fmt.Errorf("exec: %w", newPgError("23505")), store.ErrDuplicate},
		{"unmapped", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, postgres.MapError(tt.err), tt.target)
		})
	}

	assert.NoError(t, postgres.MapError(nil))
}

func TestViolationHelpers(t *testing.T) {
	t.Parallel()
	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503")))
	assert.False(t, postgres.IsUniqueViolation(nil))
	assert.True(t, postgres.IsForeignKeyViolation(newPgError("23503")))
	assert.False(t, postgres.IsForeignKeyViolation(errors.New("generic")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()
	assert.NoError(t, postgres.CheckRowsAffected(fakeResult{rows: 1}, store.ErrTaskNotFound))
	assert.ErrorIs(t, postgres.CheckRowsAffected(fakeResult{rows: 0}, store.ErrTaskNotFound), store.ErrTaskNotFound)

	cause := errors.New("driver does not count")
	assert.ErrorIs(t, postgres.CheckRowsAffected(fakeResult{err: cause}, store.ErrTaskNotFound), cause)
	assert.Error(t, postgres.CheckRowsAffected(nil, store.ErrTaskNotFound))
}
