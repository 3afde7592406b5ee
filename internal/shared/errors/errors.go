package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeInfrastructure ErrorType = "INFRASTRUCTURE_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeConflict       ErrorType = "CONFLICT_ERROR"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

// Error codes surfaced to API clients
const (
	CodeInvalidName      = "INVALID_NAME"
	CodeInvalidTenant    = "INVALID_TENANT"
	CodeMissingTenant    = "MISSING_TENANT"
	CodeDuplicate        = "DUPLICATE"
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeValidation       = "VALIDATION_FAILED"
	CodeInternal         = "INTERNAL"
)

// Sentinel errors usable with errors.Is
var (
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource conflict")
	ErrMissingTenant    = errors.New("tenant identity missing")
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// AppError represents a custom application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common error constructors

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest).WithCode(CodeValidation)
}

// NewInvalidNameError reports a logical collection name outside the allow-list.
func NewInvalidNameError(name string) *AppError {
	return NewAppError(ErrorTypeValidation,
		"invalid collection name: only letters, digits and underscores are allowed", http.StatusBadRequest).
		WithCode(CodeInvalidName).
		WithDetail("name", name)
}

// NewInvalidTenantError reports a tenant id that cannot be used as a namespace prefix.
func NewInvalidTenantError(tenantID string) *AppError {
	return NewAppError(ErrorTypeValidation,
		"invalid tenant id: only letters, digits and hyphens are allowed", http.StatusBadRequest).
		WithCode(CodeInvalidTenant).
		WithDetail("tenant", tenantID)
}

// NewMissingTenantError is returned when no tenant identity accompanies a request.
func NewMissingTenantError() *AppError {
	return NewAppError(ErrorTypeAuthentication, "tenant identity is required", http.StatusUnauthorized).
		WithCode(CodeMissingTenant).
		WithCause(ErrMissingTenant)
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthentication, message, http.StatusUnauthorized).WithCode(CodeMissingTenant)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound).
		WithCode(CodeNotFound).
		WithCause(ErrNotFound)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(ErrorTypeConflict, message, http.StatusConflict).
		WithCode(CodeDuplicate).
		WithCause(ErrConflict)
}

// NewStoreUnavailableError wraps a driver failure. The cause is kept for logs and
// never rendered to clients.
func NewStoreUnavailableError(operation string, cause error) *AppError {
	if cause == nil {
		cause = ErrStoreUnavailable
	}
	return NewAppError(ErrorTypeInfrastructure, "document store unavailable", http.StatusInternalServerError).
		WithCode(CodeStoreUnavailable).
		WithDetail("operation", operation).
		WithCause(cause)
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError).WithCode(CodeInternal)
}

// Helper functions for common error scenarios

// WrapError wraps an error with context
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus maps any error to the status an API response should carry.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if appErr, ok := AsAppError(err); ok && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}

// PublicMessage is the message safe to show to a client. Infrastructure and
// internal failures never expose their cause.
func PublicMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return "internal server error"
	}
	return appErr.Message
}

// PublicCode returns the stable error code for err.
func PublicCode(err error) string {
	if appErr, ok := AsAppError(err); ok && appErr.Code != "" {
		return appErr.Code
	}
	return CodeInternal
}

func hasType(err error, t ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == t
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return hasType(err, ErrorTypeNotFound) || errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsAuthentication checks if an error is an authentication error
func IsAuthentication(err error) bool {
	return hasType(err, ErrorTypeAuthentication) || errors.Is(err, ErrMissingTenant)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return hasType(err, ErrorTypeConflict) || errors.Is(err, ErrConflict)
}

// IsStoreUnavailable checks if an error is a wrapped store failure
func IsStoreUnavailable(err error) bool {
	return hasType(err, ErrorTypeInfrastructure)
}
