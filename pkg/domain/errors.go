package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAggregateNotFound is returned when an aggregate doesn't exist.
	ErrAggregateNotFound = errors.New("aggregate not found")

	// ErrConcurrencyConflict is returned when there's an optimistic concurrency conflict.
	ErrConcurrencyConflict = errors.New("concurrency conflict: aggregate version mismatch")

	// ErrInvalidVersion is returned when an invalid version is provided.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrSnapshotNotFound is returned when a snapshot cannot be found.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// UnhandledEventError indicates that an aggregate's event handler
// encountered an event type it does not recognize. This is a programmer
// error, not retriable: the deployed aggregate is older than its event
// history and must never silently drop events.
type UnhandledEventError struct {
	AggregateType string
	EventType     string
}

func (e *UnhandledEventError) Error() string {
	return fmt.Sprintf("aggregate %s cannot handle event type %q", e.AggregateType, e.EventType)
}

// NewUnhandledEventError creates an UnhandledEventError.
func NewUnhandledEventError(aggregateType, eventType string) error {
	return &UnhandledEventError{AggregateType: aggregateType, EventType: eventType}
}

// ValidationError reports bad input shape or values. It is surfaced from
// command validation before any event is applied, so a rejected command is
// never partially applied.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StateError reports an invariant violation: the command is well formed but
// illegal in the aggregate's current state. No event is emitted for a
// rejected command.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

// NewStateError creates a StateError.
func NewStateError(format string, args ...any) error {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

// IsState reports whether err is an invariant violation.
func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
