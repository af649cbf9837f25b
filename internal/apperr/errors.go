package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is. Every *Error matches exactly one of them.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrConflict              = errors.New("already exists")
	ErrGenerationFailed      = errors.New("generation failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Error carries a kind sentinel, a message that is safe to show to callers,
// and an optional internal cause.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool { return target == e.kind }

// Message is the public part of the error, without the cause.
func (e *Error) Message() string { return e.msg }

func newf(kind error, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

func Unauthorized(format string, args ...any) error {
	return newf(ErrUnauthorized, nil, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newf(ErrForbidden, nil, format, args...)
}

func NotFound(format string, args ...any) error {
	return newf(ErrNotFound, nil, format, args...)
}

func InvalidArgument(format string, args ...any) error {
	return newf(ErrInvalidArgument, nil, format, args...)
}

func Conflict(format string, args ...any) error {
	return newf(ErrConflict, nil, format, args...)
}

func GenerationFailed(cause error, format string, args ...any) error {
	return newf(ErrGenerationFailed, cause, format, args...)
}

func DependencyUnavailable(cause error, format string, args ...any) error {
	return newf(ErrDependencyUnavailable, cause, format, args...)
}

// Status maps an error to the HTTP status the API reports for it.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrDependencyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text that may be sent to a client. Server-side
// failures collapse to fallback so provider output never leaks.
func PublicMessage(err error, fallback string) string {
	if Status(err) >= http.StatusInternalServerError {
		return fallback
	}
	var e *Error
	if errors.As(err, &e) && e.msg != "" {
		return e.msg
	}
	return fallback
}
