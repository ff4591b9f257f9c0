package services

import "fmt"

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthorizationError reports that the principal may not act on the resource.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// StateError reports an operation that is invalid for the entity's current state.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

// CapacityError rejects lowering maxCapacity below the live booking count.
type CapacityError struct {
	BookedCount int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Cannot reduce capacity below %d (current bookings)", e.BookedCount)
}

type CapacityFullError struct {
	MaxCapacity int
	BookedCount int
}

func (e *CapacityFullError) Error() string { return "Session is full" }

type DuplicateBookingError struct{}

func (e *DuplicateBookingError) Error() string { return "You already booked this session" }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) error {
	return &AuthorizationError{Message: msg}
}

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func badState(format string, args ...interface{}) error {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}
