package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// DefaultInternalMessage is used when a failure carries no message of its own.
const DefaultInternalMessage = "Internal error"

// AppError is the unified application error type.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates an AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// MissingInput reports an absent required field with the given client message,
// e.g. "No file provided".
func MissingInput(message string) *AppError {
	return New(ErrCodeMissingInput, message, http.StatusBadRequest)
}

// InvalidInput reports a malformed request.
func InvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// Unauthorized never says why the request was rejected.
func Unauthorized() *AppError {
	return New(ErrCodeUnauthorized, "Unauthorized", http.StatusUnauthorized)
}

// FileNotFound reports a missing object.
func FileNotFound() *AppError {
	return New(ErrCodeNotFound, "File not found", http.StatusNotFound)
}

// RouteNotFound reports an unmatched method and path.
func RouteNotFound() *AppError {
	return New(ErrCodeRouteNotFound, "Not found", http.StatusNotFound)
}

// PayloadTooLarge reports a body over the configured size limit.
func PayloadTooLarge() *AppError {
	return New(ErrCodePayloadTooLarge, "File too large", http.StatusRequestEntityTooLarge)
}

// Internal wraps an unexpected failure, surfacing its message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, messageOf(cause), http.StatusInternalServerError).WithCause(cause)
}

// StoreFailure wraps an object store error, surfacing its message.
func StoreFailure(cause error) *AppError {
	return New(ErrCodeStorage, messageOf(cause), http.StatusInternalServerError).WithCause(cause)
}

// FromError maps any error onto an AppError. Nil stays nil; a body cut off
// by http.MaxBytesReader becomes 413.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return PayloadTooLarge().WithCause(err)
	}
	return Internal(err)
}

// AsAppError extracts an AppError from the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err maps to a 404.
func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.HTTPStatus == http.StatusNotFound
}

func messageOf(err error) string {
	if err == nil || err.Error() == "" {
		return DefaultInternalMessage
	}
	return err.Error()
}
