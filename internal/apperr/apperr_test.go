package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(Conflict, "duplicate application")
	if KindOf(err) != Conflict {
		t.Errorf("KindOf = %s, want %s", KindOf(err), Conflict)
	}
	if KindOf(errors.New("plain")) != Internal {
		t.Error("unknown errors should map to Internal")
	}
	if KindOf(nil) != Internal {
		t.Error("nil maps to Internal")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(NotFound, "user not found")
	wrapped := fmt.Errorf("promote: %w", inner)
	if KindOf(wrapped) != NotFound {
		t.Errorf("KindOf(wrapped) = %s, want %s", KindOf(wrapped), NotFound)
	}
	if !errors.Is(wrapped, inner) {
		t.Error("errors.Is should match the sentinel through the wrap")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Unauthorized:           http.StatusUnauthorized,
		Forbidden:              http.StatusForbidden,
		NotFound:               http.StatusNotFound,
		Conflict:               http.StatusConflict,
		ConcurrentModification: http.StatusConflict,
		InvalidStateTransition: http.StatusUnprocessableEntity,
		ValidationFailed:       http.StatusBadRequest,
		Internal:               http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", kind, got, want)
		}
	}
}
