// Package apperr carries the error taxonomy every service in this backend
// reports through. Handlers never inspect raw mongo errors; they map an
// *apperr.Error to an HTTP status via the fiber ErrorHandler in main.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	Unauthorized           Kind = "unauthorized"
	Forbidden              Kind = "forbidden"
	NotFound               Kind = "not_found"
	Conflict               Kind = "conflict"
	InvalidStateTransition Kind = "invalid_state_transition"
	ValidationFailed       Kind = "validation_failed"
	ConcurrentModification Kind = "concurrent_modification"
	Internal               Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// KindOf extracts the taxonomy kind from an error chain. Unknown errors
// report Internal so they surface as 500s.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is lets errors.Is match two taxonomy errors by kind and message, so the
// sentinel errors declared in services survive wrapping with %w.
func (e *Error) Is(target error) bool {
	var ae *Error
	if !errors.As(target, &ae) {
		return false
	}
	return e.Kind == ae.Kind && e.Message == ae.Message
}

// HTTPStatus maps a kind to the status the boundary responds with.
func HTTPStatus(k Kind) int {
	switch k {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict, ConcurrentModification:
		return http.StatusConflict
	case InvalidStateTransition:
		return http.StatusUnprocessableEntity
	case ValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
