package errors

import (
	"fmt"
	"net/http"
)

// Common application errors
var (
	ErrNotFound     = NewNotFoundError("resource", "resource not found")
	ErrConflict     = NewConflictError("resource", "resource already exists")
	ErrInvalidInput = NewValidationError("", "invalid input")
	ErrInternal     = NewInternalError("internal server error", nil)
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus returns the HTTP status code for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

// InvalidIDError represents an identifier that is not a valid object id
type InvalidIDError struct {
	ID string
}

// NewInvalidIDError creates a new invalid id error
func NewInvalidIDError(id string) *InvalidIDError {
	return &InvalidIDError{ID: id}
}

// Error implements the error interface
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id: %q is not a valid object id", e.ID)
}

// HTTPStatus returns the HTTP status code for this error
func (e *InvalidIDError) HTTPStatus() int {
	return http.StatusBadRequest
}

// EmptyUpdateError represents an update request that carries no fields
type EmptyUpdateError struct{}

// NewEmptyUpdateError creates a new empty update error
func NewEmptyUpdateError() *EmptyUpdateError {
	return &EmptyUpdateError{}
}

// Error implements the error interface
func (e *EmptyUpdateError) Error() string {
	return "no fields to update"
}

// HTTPStatus returns the HTTP status code for this error
func (e *EmptyUpdateError) HTTPStatus() int {
	return http.StatusBadRequest
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status code for this error
func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

// ConflictError represents a uniqueness conflict, e.g. an email already in use
type ConflictError struct {
	Resource string
	Message  string
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// HTTPStatus returns the HTTP status code for this error
func (e *ConflictError) HTTPStatus() int {
	return http.StatusConflict
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// HTTPStatuser interface for errors that can provide an HTTP status code
type HTTPStatuser interface {
	HTTPStatus() int
}

// StatusOf returns the HTTP status code carried by err, or 500 for
// errors that do not implement HTTPStatuser.
func StatusOf(err error) int {
	if se, ok := err.(HTTPStatuser); ok {
		return se.HTTPStatus()
	}
	return http.StatusInternalServerError
}
