package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Details string       `json:"details,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target carries the same code, so errors.Is works
// against the sentinel values below regardless of message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e with a different message
func (e *APIError) WithMessage(message string) *APIError {
	c := *e
	c.Message = message
	return &c
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput      = NewAPIError("VALIDATION_ERROR", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized      = NewAPIError("UNAUTHENTICATED", "Authentication required", http.StatusUnauthorized)
	ErrInvalidCredential = NewAPIError("INVALID_CREDENTIAL", "Invalid credentials", http.StatusUnauthorized)
	ErrForbidden         = NewAPIError("FORBIDDEN", "User not authorized", http.StatusForbidden)
	ErrNotFound          = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal          = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict          = NewAPIError("CONFLICT", "Resource conflict", http.StatusBadRequest)
)

// Validation builds a 400 carrying per-field messages
func Validation(fields ...FieldError) *APIError {
	err := ErrInvalidInput.WithMessage("Validation failed")
	err.Errors = fields
	return err
}

func NotFound(message string) *APIError {
	return ErrNotFound.WithMessage(message)
}

func Conflict(message string) *APIError {
	return ErrConflict.WithMessage(message)
}

func Forbidden(message string) *APIError {
	return ErrForbidden.WithMessage(message)
}

func InvalidInput(message string) *APIError {
	return ErrInvalidInput.WithMessage(message)
}

// Internal wraps an unexpected failure; the cause goes to Details, which is
// logged but never sent to the client.
func Internal(err error, message string) *APIError {
	return Wrap(err, ErrInternal.Code, message, http.StatusInternalServerError)
}

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := As(err); ok {
		return apiErr
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewAPIError(code, message, status, details)
}

// As unwraps err down to an *APIError if the chain holds one
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
