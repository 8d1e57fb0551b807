package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure for the HTTP layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidState
)

// AppError is an error with a client-facing message and a kind that decides the status code.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newf(kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *AppError {
	return newf(KindValidation, format, args...)
}

func Unauthorized(format string, args ...any) *AppError {
	return newf(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *AppError {
	return newf(KindForbidden, format, args...)
}

func NotFound(format string, args ...any) *AppError {
	return newf(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *AppError {
	return newf(KindConflict, format, args...)
}

func InvalidState(format string, args ...any) *AppError {
	return newf(KindInvalidState, format, args...)
}

// Internal wraps an unexpected failure. The message is logged, never sent to the client.
func Internal(err error, format string, args ...any) *AppError {
	return &AppError{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// AsAppError returns err as an *AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Kind: KindInternal, Message: "unexpected error", Err: err}
}
