package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOfWrappedError(t *testing.T) {
	base := NotFound("course %s not found", "abc")
	wrapped := fmt.Errorf("loading snapshot: %w", base)

	status, code := StatusOf(wrapped)
	if status != http.StatusNotFound || code != KindNotFound {
		t.Fatalf("StatusOf: want=(404,%q) got=(%d,%q)", KindNotFound, status, code)
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Fatalf("IsKind through wrap: want true")
	}
	if IsKind(wrapped, KindConflict) {
		t.Fatalf("IsKind wrong code: want false")
	}
}

func TestStatusOfPlainErrorFallsBack(t *testing.T) {
	status, code := StatusOf(errors.New("boom"))
	if status != http.StatusInternalServerError || code != "internal" {
		t.Fatalf("fallback: got=(%d,%q)", status, code)
	}
}

func TestConstructorStatuses(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
	}{
		{NotFound("x"), http.StatusNotFound, KindNotFound},
		{Conflict("x"), http.StatusConflict, KindConflict},
		{InvalidState("x"), http.StatusBadRequest, KindInvalidState},
		{Unauthorized("x"), http.StatusUnauthorized, KindUnauthorized},
	}
	for _, c := range cases {
		if c.err.Status != c.status || c.err.Code != c.code {
			t.Fatalf("%q: want=(%d,%q) got=(%d,%q)", c.code, c.status, c.code, c.err.Status, c.err.Code)
		}
	}
}
