package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the outcomes the API can report.
// Every kind except Internal is operational: caused by the client and safe
// to return verbatim.
type Kind string

const (
	NotFound              Kind = "not_found"
	Forbidden             Kind = "forbidden"
	NotAuthenticated      Kind = "not_authenticated"
	ValidationError       Kind = "validation_error"
	InvalidParameter      Kind = "invalid_parameter"
	PageOutOfRange        Kind = "page_out_of_range"
	InvalidToken          Kind = "invalid_token"
	AccountDeactivated    Kind = "account_deactivated"
	SessionInvalidated    Kind = "session_invalidated"
	ExpiredOrInvalidToken Kind = "expired_or_invalid_token"
	Conflict              Kind = "conflict"
	Internal              Kind = "internal"
)

// Error carries a classified failure through the request pipeline. Message
// is what the client may see; Err keeps the underlying cause for logs and
// development responses.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a client-visible message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error while keeping it for diagnostics.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is classified with the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsOperational reports whether err is safe to disclose to the caller.
func IsOperational(err error) bool {
	return KindOf(err) != Internal
}

// Status maps an error to the HTTP status code it should be reported with.
func Status(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case Forbidden, AccountDeactivated:
		return http.StatusForbidden
	case NotAuthenticated, InvalidToken, SessionInvalidated:
		return http.StatusUnauthorized
	case ValidationError, InvalidParameter, PageOutOfRange, ExpiredOrInvalidToken, Conflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-visible message for err. Unclassified errors
// get a generic message so internal details never leak by default.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != Internal {
		return appErr.Message
	}
	return "Something went wrong"
}
