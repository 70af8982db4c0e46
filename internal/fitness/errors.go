package fitness

import (
	"errors"
)

var (
	ErrRoutineNotFound = errors.New("routine not found")
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrMalformedDoc    = errors.New("malformed document")
)

// ValidationError is a user input problem. The operation is aborted
// without any state change and the message is shown to the user as is.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err, or anything it wraps, is a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
