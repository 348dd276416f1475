package status

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("input: validation failed")
	ErrDuplicate             = errors.New("user: already exists")
	ErrUnauthenticated       = errors.New("auth: authentication required")
	ErrInvalidCredentials    = errors.New("auth: invalid username or password")
	ErrNotFound              = errors.New("record: not found")
	ErrConflict              = errors.New("record: conflict")
	ErrInsufficientInventory = errors.New("inventory: not enough tickets available")
	ErrUnsupportedImage      = errors.New("image: unsupported file type")
)

// ValidationError reports malformed input. Nothing is written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DuplicateError is returned by registration when the name or email is taken.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("user: %s already registered", e.Field)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

type AuthErrorKind int

const (
	UnknownUser AuthErrorKind = iota + 1
	BadPassword
)

func (k AuthErrorKind) String() string {
	switch k {
	case UnknownUser:
		return "unknown_user"
	case BadPassword:
		return "bad_password"
	default:
		return "unknown"
	}
}

// AuthError keeps the failing factor for logs and tests. Responses must only
// surface ErrInvalidCredentials.
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	return "auth: login failed (" + e.Kind.String() + ")"
}

func (e *AuthError) Unwrap() error { return ErrInvalidCredentials }

type InsufficientInventoryError struct {
	EventID   int64
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("inventory: event %d has %d tickets left, %d requested", e.EventID, e.Available, e.Requested)
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }

type NotFoundError struct {
	Entity string
	ID     int64
}

func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d: not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }
