package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeExternal     ErrorType = "EXTERNAL_API_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
)

type APIError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Details)
	}
	return e.Message
}

// Extensions is picked up by graphql-go when the error surfaces from a resolver.
func (e *APIError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"type": string(e.Type)}
	if e.Details != nil {
		ext["details"] = e.Details
	}
	return ext
}

// StatusCode maps the error type onto the HTTP status the API answers with.
func (e *APIError) StatusCode() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeExternal:
		return http.StatusServiceUnavailable
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// As unwraps err looking for an *APIError.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Is reports whether err carries an *APIError of the given type.
func Is(err error, t ErrorType) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Type == t
}

// Error constructors
func NewValidationError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

func NewUnauthorizedError(service string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeUnauthorized,
		Message: fmt.Sprintf("Unauthorized by external service (%s)", service),
		Details: err.Error(),
	}
}

func NewExternalError(service string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeExternal,
		Message: fmt.Sprintf("Error from external service (%s)", service),
		Details: err.Error(),
	}
}

func NewInternalError(err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: "Internal server error",
		Details: err.Error(),
	}
}
