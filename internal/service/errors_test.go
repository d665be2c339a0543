package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/studyplan-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestNewServiceError(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"store plan not found", store.ErrPlanNotFound, ErrPlanNotFound},
		{"wrapped task not found", fmt.Errorf("load: %w", store.ErrTaskNotFound), ErrTaskNotFound},
		{"item not found", store.ErrItemNotFound, ErrItemNotFound},
		{"subject not found", store.ErrSubjectNotFound, ErrSubjectNotFound},
		{"not owned", ErrNotOwned, ErrNotOwned},
		{"wrapped unparseable", fmt.Errorf("%w: bad json", ErrDescriptionUnparseable), ErrDescriptionUnparseable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Same(t, tt.want, NewServiceError("op", "msg", tt.err))
		})
	}

	t.Run("unexpected error is wrapped", func(t *testing.T) {
		t.Parallel()
		err := NewServiceError("generate_plan", "failed to store plan", boom)
		var serr *ServiceError
		assert.ErrorAs(t, err, &serr)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "service generate_plan failed: failed to store plan: connection reset", err.Error())
	})

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, NewServiceError("op", "msg", nil))
	})
}
