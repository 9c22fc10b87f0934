// Package errors provides structured errors that carry an HTTP status class and
// context fields for logging and JSON responses.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorType is the category of an error. It drives the HTTP status and log level.
type ErrorType string

const (
	TypeValidation ErrorType = "validation" // 400
	TypeNotFound   ErrorType = "not_found"  // 404
	TypeConflict   ErrorType = "conflict"   // 409
	TypeInternal   ErrorType = "internal"   // 500
	TypeExternal   ErrorType = "external"   // 502
)

type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// LogLevel is the level an error of this type is logged at. Client mistakes are
// info, server and upstream failures are errors.
func (e *Error) LogLevel() slog.Level {
	switch e.Type {
	case TypeValidation, TypeNotFound:
		return slog.LevelInfo
	case TypeConflict:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause, Context: make(map[string]any)}
}

func ValidationError(message string) *Error {
	return newError(TypeValidation, message, nil)
}

// NotFoundError keeps cause so callers can still match the underlying sentinel.
func NotFoundError(message string, cause error) *Error {
	return newError(TypeNotFound, message, cause)
}

func ConflictError(message string) *Error {
	return newError(TypeConflict, message, nil)
}

func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// WithContext adds a context field and returns e for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON body sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse renders e for clients. The cause is never exposed.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError returns the *Error in err's chain, or wraps err as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
