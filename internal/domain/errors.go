package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMission is returned when a mission id was never seeded.
	ErrUnknownMission = errors.New("unknown mission")
	// ErrNotFound is returned by single-row reads that matched nothing.
	ErrNotFound = errors.New("not found")
)

// FieldError names one failing field of a rejected payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError rejects a payload before any side effect.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.String())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Add records a failing field.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// OrNil returns nil when nothing was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-field rejection.
func NewValidationError(field, format string, args ...any) *ValidationError {
	ve := &ValidationError{}
	ve.Add(field, format, args...)
	return ve
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
