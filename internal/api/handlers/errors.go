package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
)

// Error codes as constants for consistent error responses across handlers
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeInvalidToken    = "INVALID_TOKEN"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeInvalidID       = "INVALID_ID"
	ErrCodeInvalidUserID   = "INVALID_USER_ID"
	ErrCodeInvalidWindow   = "INVALID_WINDOW"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"

	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
)

// Error messages as constants for consistency
const (
	MsgInvalidRequest     = "Invalid request payload"
	MsgUnauthorized       = "Authentication required"
	MsgForbidden          = "You can only access your own data"
	MsgInternalError      = "Internal server error"
	MsgServiceUnavailable = "Service temporarily unavailable"
)

// ErrorResponseBuilder provides a fluent interface for building error responses
type ErrorResponseBuilder struct {
	status  int
	code    string
	message string
	details map[string]interface{}
}

// NewError creates a new ErrorResponseBuilder
func NewError(status int, code string) *ErrorResponseBuilder {
	return &ErrorResponseBuilder{
		status: status,
		code:   code,
	}
}

func (e *ErrorResponseBuilder) Message(msg string) *ErrorResponseBuilder {
	e.message = msg
	return e
}

// Detail adds a single detail to the error response
func (e *ErrorResponseBuilder) Detail(key string, value interface{}) *ErrorResponseBuilder {
	if e.details == nil {
		e.details = make(map[string]interface{})
	}
	e.details[key] = value
	return e
}

func (e *ErrorResponseBuilder) Details(details map[string]interface{}) *ErrorResponseBuilder {
	e.details = details
	return e
}

// Send writes the error response
func (e *ErrorResponseBuilder) Send(c *gin.Context) {
	c.JSON(e.status, entities.ErrorResponse{
		Code:    e.code,
		Message: e.message,
		Details: e.details,
	})
}

// statusFor maps a domain error class onto an HTTP status
func statusFor(err error) int {
	switch {
	case domainerrors.IsValidation(err):
		return http.StatusBadRequest
	case domainerrors.IsNotFound(err):
		return http.StatusNotFound
	case domainerrors.IsConflict(err):
		return http.StatusConflict
	case domainerrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case domainerrors.IsForbidden(err):
		return http.StatusForbidden
	case domainerrors.IsRateLimit(err):
		return http.StatusTooManyRequests
	case domainerrors.IsExternalService(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// SendDomainError maps a service error onto the standard error response.
// Persistence and unknown errors never expose their cause.
func SendDomainError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		SendInternalError(c, ErrCodeInternalError, MsgInternalError)
		return
	}
	if status == http.StatusServiceUnavailable {
		SendServiceUnavailable(c, MsgServiceUnavailable)
		return
	}

	domainErr, ok := domainerrors.AsDomainError(err)
	if !ok {
		SendInternalError(c, ErrCodeInternalError, MsgInternalError)
		return
	}
	NewError(status, domainErr.Code).
		Message(domainErr.Message).
		Details(domainErr.Details).
		Send(c)
}

// SendBadRequest sends a 400 Bad Request error
func SendBadRequest(c *gin.Context, code, message string, details ...map[string]interface{}) {
	var det map[string]interface{}
	if len(details) > 0 {
		det = details[0]
	}
	c.JSON(http.StatusBadRequest, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: det,
	})
}

func SendUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, entities.ErrorResponse{
		Code:    ErrCodeUnauthorized,
		Message: message,
	})
}

func SendForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, entities.ErrorResponse{
		Code:    ErrCodeForbidden,
		Message: message,
	})
}

func SendNotFound(c *gin.Context, code, message string) {
	c.JSON(http.StatusNotFound, entities.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func SendInternalError(c *gin.Context, code, message string) {
	c.JSON(http.StatusInternalServerError, entities.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func SendServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, entities.ErrorResponse{
		Code:    ErrCodeServiceUnavailable,
		Message: message,
	})
}

// SendSuccess sends a 200 OK response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendCreated sends a 201 Created response with data
func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendNoContent sends a 204 No Content response
func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SendValidationError sends a validation error with field details
func SendValidationError(c *gin.Context, message string, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, entities.ErrorResponse{
		Code:    ErrCodeValidationError,
		Message: message,
		Details: map[string]interface{}{
			"validation_errors": fieldErrors,
		},
	})
}
