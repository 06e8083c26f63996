package errors

import (
	"errors"
	"fmt"
)

// Generic error kinds

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingField indicates a required input field is absent
	ErrMissingField = errors.New("missing field")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")

	// ErrRateLimitExceeded indicates a caller exceeded its request budget
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Pipeline errors

var (
	// ErrInference indicates a model failed to produce a usable output
	ErrInference = errors.New("inference failed")

	// ErrPersistence indicates a storage backend rejected or lost a write
	ErrPersistence = errors.New("persistence failed")

	// ErrNoConfirmation indicates the remote store accepted a write without echoing the record
	ErrNoConfirmation = errors.New("remote store returned no record")

	// ErrQueueFull indicates the fallback queue had no free slot
	ErrQueueFull = errors.New("fallback queue full")

	// ErrClosed indicates the component was already shut down
	ErrClosed = errors.New("component closed")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError reports a profile field that is absent or not convertible.
// Kind is ErrMissingField or ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
	Kind    error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap exposes the kind so callers can use errors.Is
func (e *ValidationError) Unwrap() error {
	if e.Kind == nil {
		return ErrInvalidInput
	}
	return e.Kind
}

// NewValidationError creates a new validation error for an unusable value
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Kind:    ErrInvalidInput,
	}
}

// NewMissingFieldError creates a validation error for an absent field
func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "field is required",
		Kind:    ErrMissingField,
	}
}

// InferenceError wraps a failure of one ensemble member
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s model: %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() []error {
	return []error{ErrInference, e.Err}
}

// NewInferenceError creates a new inference error
func NewInferenceError(model string, err error) *InferenceError {
	return &InferenceError{Model: model, Err: err}
}

// PersistenceError wraps a failed storage operation of a named backend
type PersistenceError struct {
	Backend string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// NewPersistenceError creates a new persistence error
func NewPersistenceError(backend, op string, err error) *PersistenceError {
	return &PersistenceError{Backend: backend, Op: op, Err: err}
}

// MultiError wraps multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("multiple errors (%d): %v", len(m.Errors), m.Errors[0])
}

// Add adds an error to the list
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// ToError returns the MultiError as an error, or nil if no errors
func (m *MultiError) ToError() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join combines errors; nil entries are dropped
func Join(errs ...error) error {
	return errors.Join(errs...)
}
