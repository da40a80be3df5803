package models

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a custom error code for the application
type ErrorCode string

const (
	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Remote collaborators: spreadsheet, SMTP, database
	ErrCodeDependency ErrorCode = "DEPENDENCY_ERROR"

	// Service errors
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// AppError represents a structured application error
type AppError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	StatusCode  int                    `json:"-"`
	Internal    error                  `json:"-"`
	FieldErrors map[string]string      `json:"errors,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the internal error for error chain support
func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Body is the JSON envelope sent to clients. Details of server faults are
// never exposed; metadata keys cannot shadow the envelope fields.
func (e *AppError) Body() map[string]interface{} {
	body := map[string]interface{}{
		"success": false,
		"message": e.Message,
	}
	if len(e.FieldErrors) > 0 {
		body["errors"] = e.FieldErrors
	}
	if e.Details != "" && e.StatusCode < http.StatusInternalServerError {
		body["details"] = e.Details
	}
	for k, v := range e.Metadata {
		if _, taken := body[k]; !taken {
			body[k] = v
		}
	}
	return body
}

// Common error constructors

func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:       ErrCodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:       ErrCodeBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewValidationError carries the per-field messages back to the form
func NewValidationError(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:        ErrCodeValidation,
		Message:     message,
		StatusCode:  http.StatusBadRequest,
		FieldErrors: fields,
	}
}

func NewConflictError(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:        ErrCodeConflict,
		Message:     message,
		StatusCode:  http.StatusConflict,
		FieldErrors: fields,
	}
}

// NewDependencyError is returned when the sheet, SMTP server or database failed.
// The message is shown to the caller; err is only logged.
func NewDependencyError(message string, err error) *AppError {
	return &AppError{
		Code:       ErrCodeDependency,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:       ErrCodeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewServiceUnavailableError(message string) *AppError {
	return &AppError{
		Code:       ErrCodeServiceUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Code:       ErrCodeRateLimitExceeded,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}
