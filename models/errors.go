package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced at the API boundary. Typed errors below unwrap to these.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication error")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrConflict     = errors.New("conflict")
	ErrTransport    = errors.New("transport error")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for a field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a missing record
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// TransportError wraps a failure to reach the API. Only the client produces it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// ErrorType names the error kind the way APIError.Type reports it
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrUnauthorized):
		return "AuthenticationError"
	case errors.Is(err, ErrForbidden):
		return "AuthorizationError"
	case errors.Is(err, ErrConflict):
		return "ConflictError"
	case errors.Is(err, ErrTransport):
		return "TransportError"
	case errors.Is(err, ErrRateLimited):
		return "RateLimitError"
	default:
		return "DatabaseError"
	}
}
