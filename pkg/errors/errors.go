package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation marks malformed or missing input, rejected before
	// any store call.
	ErrorTypeValidation ErrorType = "VALIDATION"
	// ErrorTypeNotFound marks a referenced entity that does not exist.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	// ErrorTypeTransaction marks an aborted atomic multi-item write. The
	// store guarantees all-or-nothing, so no partial rows persist.
	ErrorTypeTransaction ErrorType = "TRANSACTION"
	// ErrorTypeStoreUnavailable marks a transport or connectivity failure
	// from the store adapter. Propagated, not retried.
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"
	// ErrorTypeDelivery marks a failed outbound email delivery. Recorded on
	// the send record, never escalated to the dispatch caller.
	ErrorTypeDelivery ErrorType = "DELIVERY"
	// ErrorTypeInternal is everything else.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewTransactionError creates an error for an aborted multi-item write.
// The store's per-item cancellation reasons are collapsed into a single
// message; the dominant cause is a referenced person that does not exist.
func NewTransactionError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeTransaction,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewStoreUnavailableError creates an error for store transport failures
func NewStoreUnavailableError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeStoreUnavailable,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewDeliveryError creates an error for a failed email delivery
func NewDeliveryError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeDelivery,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// IsType checks whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return IsType(err, ErrorTypeValidation) }

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool { return IsType(err, ErrorTypeNotFound) }

// IsTransaction reports whether err is a transaction error
func IsTransaction(err error) bool { return IsType(err, ErrorTypeTransaction) }

// StatusOf returns the HTTP status for err, defaulting to 500
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// CodeOf returns the error type string for err, defaulting to INTERNAL
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return string(ErrorTypeInternal)
}
