// Package apperr defines the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindMethodNotAllowed   Kind = "METHOD_NOT_ALLOWED"
	KindConflict           Kind = "CONFLICT"
	KindPayloadTooLarge    Kind = "PAYLOAD_TOO_LARGE"
	KindUnsupportedMedia   Kind = "UNSUPPORTED_MEDIA_TYPE"
	KindInternal           Kind = "INTERNAL_ERROR"
)

// InvalidCredentialsMessage is returned for every failed login, whatever check failed.
const InvalidCredentialsMessage = "Invalid email or password"

// Error is an application error carrying a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindConflict:
		return http.StatusConflict
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: InvalidCredentialsMessage}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound builds the error for an identifier that does not resolve.
func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s with id %q not found", resource, id)}
}

func MethodNotAllowed(method string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: fmt.Sprintf("Method %s not allowed", method)}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func PayloadTooLarge(message string) *Error {
	return &Error{Kind: KindPayloadTooLarge, Message: message}
}

func UnsupportedMedia(message string) *Error {
	return &Error{Kind: KindUnsupportedMedia, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// From returns err as an *Error, wrapping anything unrecognised as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
