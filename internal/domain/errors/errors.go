// Package errors defines the error classes shared by the finance services.
// HTTP handlers map these classes onto status codes.
package errors

import (
	"errors"
	"fmt"
)

// Error classes
var (
	// ErrNotFound indicates a referenced user, wallet, budget or transaction does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates malformed or missing input
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates the resource already exists or is in a conflicting state
	ErrConflict = errors.New("conflict")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	// ErrExternalService indicates an AI provider or other upstream call failed
	ErrExternalService = errors.New("external service error")

	// ErrPersistence indicates a storage read or write failed
	ErrPersistence = errors.New("persistence error")

	ErrRateLimit = errors.New("rate limit exceeded")
)

// DomainError carries an error class plus a stable code and client-facing message
type DomainError struct {
	Err       error
	Code      string
	Message   string
	Details   map[string]interface{}
	Retryable bool
	cause     error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Unwrap exposes both the class sentinel and the underlying cause
func (e *DomainError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// IsRetryable reports whether retrying the operation may succeed
func (e *DomainError) IsRetryable() bool {
	return e.Retryable
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// NotFoundError creates a not found error for the named resource
func NotFoundError(resource string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    fmt.Sprintf("%s_NOT_FOUND", upper(resource)),
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// ValidationError creates a validation error for a single field
func ValidationError(field, message string) *DomainError {
	return &DomainError{
		Err:     ErrValidation,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// ConflictError creates a conflict error
func ConflictError(resource, reason string) *DomainError {
	return &DomainError{
		Err:     ErrConflict,
		Code:    "CONFLICT",
		Message: fmt.Sprintf("%s %s", resource, reason),
	}
}

func UnauthorizedError(message string) *DomainError {
	return &DomainError{Err: ErrUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

func ForbiddenError(message string) *DomainError {
	return &DomainError{Err: ErrForbidden, Code: "FORBIDDEN", Message: message}
}

// ExternalServiceError wraps a failed call to an upstream service
func ExternalServiceError(service string, err error) *DomainError {
	return &DomainError{
		Err:       ErrExternalService,
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("%s request failed", service),
		Retryable: true,
		cause:     err,
	}
}

// PersistenceError wraps a storage failure. The message stays generic for clients.
func PersistenceError(op string, err error) *DomainError {
	return &DomainError{
		Err:     ErrPersistence,
		Code:    "PERSISTENCE_ERROR",
		Message: fmt.Sprintf("failed to %s", op),
		cause:   err,
	}
}

func RateLimitError(retryAfterSeconds int) *DomainError {
	return &DomainError{
		Err:     ErrRateLimit,
		Code:    "RATE_LIMIT_EXCEEDED",
		Message: "rate limit exceeded",
		Details: map[string]interface{}{"retry_after": retryAfterSeconds},
	}
}

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool      { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }
func IsUnauthorized(err error) bool    { return errors.Is(err, ErrUnauthorized) }
func IsForbidden(err error) bool       { return errors.Is(err, ErrForbidden) }
func IsExternalService(err error) bool { return errors.Is(err, ErrExternalService) }
func IsPersistence(err error) bool     { return errors.Is(err, ErrPersistence) }
func IsRateLimit(err error) bool       { return errors.Is(err, ErrRateLimit) }

// GetErrorCode extracts the code from a domain error, or INTERNAL_ERROR
func GetErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}

// AsDomainError returns the first DomainError in the chain
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	ok := errors.As(err, &domainErr)
	return domainErr, ok
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z':
			b[i] = c - 32
		case c == ' ' || c == '-':
			b[i] = '_'
		}
	}
	return string(b)
}
