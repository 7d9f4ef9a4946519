package apperror

import (
	"errors"
	"net/http"
)

// AppError is an error that carries the HTTP status it should be reported with.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// InvalidArgument reports malformed input: bad ranges, unknown cities, missing identifiers.
func InvalidArgument(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

// Conflict reports a write rejected because of existing state.
func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

// Forbidden reports an authenticated caller acting outside its permissions.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
