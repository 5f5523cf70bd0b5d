package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/examprep/internal/errors"
)

func TestHasCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("grading card: %w", errors.NewStaleStateError(7))

	assert.True(t, errors.HasCode(err, errors.ErrCodeStaleState))
	assert.False(t, errors.HasCode(err, errors.ErrCodeCardNotFound))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrCodeStaleState))
}

func TestAs(t *testing.T) {
	appErr, ok := errors.As(fmt.Errorf("wrap: %w", errors.NewInvalidGradeError(9)))
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "got 9")
}

func TestStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *errors.AppError
		status int
		code   string
	}{
		{"invalid grade", errors.NewInvalidGradeError(-1), http.StatusBadRequest, errors.ErrCodeInvalidGrade},
		{"session closed", errors.NewSessionClosedError("abc", "completed"), http.StatusConflict, errors.ErrCodeSessionClosed},
		{"stale state", errors.NewStaleStateError(1), http.StatusConflict, errors.ErrCodeStaleState},
		{"card not found", errors.NewCardNotFoundError(1), http.StatusNotFound, errors.ErrCodeCardNotFound},
		{"not found", errors.NewNotFoundError("deck", 3), http.StatusNotFound, errors.ErrCodeNotFound},
		{"rate limited", errors.NewRateLimitedError(), http.StatusTooManyRequests, errors.ErrCodeRateLimited},
		{"timeout", errors.NewTimeoutError(), http.StatusServiceUnavailable, errors.ErrCodeTimeout},
		{"internal", errors.NewInternalError(fmt.Errorf("boom")), http.StatusInternalServerError, errors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestInternalErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := errors.NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}
