// Package apperr defines the error kinds surfaced by the API and their
// HTTP status mapping.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	MissingCredential
	InvalidCredential
	SessionExpired
	Unauthenticated
	Forbidden
	DuplicateEmail
	CodeMismatch
	NotFound
	UpstreamFailure
	Invalid
	Conflict
)

var kindNames = map[Kind]string{
	Internal:          "internal",
	MissingCredential: "missing_credential",
	InvalidCredential: "invalid_credential",
	SessionExpired:    "session_expired",
	Unauthenticated:   "unauthenticated",
	Forbidden:         "forbidden",
	DuplicateEmail:    "duplicate_email",
	CodeMismatch:      "code_mismatch",
	NotFound:          "not_found",
	UpstreamFailure:   "upstream_failure",
	Invalid:           "invalid",
	Conflict:          "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status maps a kind to the HTTP status the API responds with.
func (k Kind) Status() int {
	switch k {
	case MissingCredential, InvalidCredential, SessionExpired, Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case DuplicateEmail, Conflict:
		return http.StatusConflict
	case CodeMismatch, Invalid:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case UpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a client-safe message. Err holds the cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Upstream wraps a store, cache or provider failure.
func Upstream(message string, err error) *Error {
	return Wrap(UpstreamFailure, message, err)
}

// KindOf returns Internal for errors that do not carry a kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Message returns the text that may be shown to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "Internal server error"
}
