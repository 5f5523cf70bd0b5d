package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInvalidGrade  = "INVALID_GRADE"
	ErrCodeSessionClosed = "SESSION_CLOSED"
	ErrCodeStaleState    = "STALE_STATE"
	ErrCodeCardNotFound  = "CARD_NOT_FOUND"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeTimeout       = "TIMEOUT"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "INVALID_GRADE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As extracts the AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewInvalidGradeError is returned for a quality grade outside 0..5.
// Nothing has been mutated when it is returned; the caller should re-prompt.
func NewInvalidGradeError(quality int) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidGrade,
		Message: fmt.Sprintf("quality must be between 0 and 5, got %d", quality),
		Status:  http.StatusBadRequest,
	}
}

// NewSessionClosedError is returned when grading a completed or aborted session.
func NewSessionClosedError(sessionID string, status string) *AppError {
	return &AppError{
		Code:    ErrCodeSessionClosed,
		Message: fmt.Sprintf("session %s is %s", sessionID, status),
		Status:  http.StatusConflict,
	}
}

// NewStaleStateError is returned when a card changed between read and write.
// The caller re-fetches the card and retries the grade.
func NewStaleStateError(cardID int64) *AppError {
	return &AppError{
		Code:    ErrCodeStaleState,
		Message: fmt.Sprintf("card %d was modified concurrently", cardID),
		Status:  http.StatusConflict,
	}
}

// NewCardNotFoundError creates a new CARD_NOT_FOUND error
func NewCardNotFoundError(cardID int64) *AppError {
	return &AppError{
		Code:    ErrCodeCardNotFound,
		Message: fmt.Sprintf("card not found: %d", cardID),
		Status:  http.StatusNotFound,
	}
}

// NewRateLimitedError is returned when a client exceeds its request budget.
func NewRateLimitedError() *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: "too many requests, slow down",
		Status:  http.StatusTooManyRequests,
	}
}

// NewTimeoutError is returned when a request outlives its deadline.
func NewTimeoutError() *AppError {
	return &AppError{
		Code:    ErrCodeTimeout,
		Message: "request timed out",
		Status:  http.StatusServiceUnavailable,
	}
}
