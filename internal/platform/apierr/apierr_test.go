package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
		code   string
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest, CodeValidation},
		{"permission", Permission("banned"), http.StatusForbidden, CodePermission},
		{"immutability", Immutability("axiom"), http.StatusConflict, CodeImmutability},
		{"state", State("already resolved"), http.StatusConflict, CodeState},
		{"not found", NotFound("missing"), http.StatusNotFound, CodeNotFound},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Fatalf("Status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Code != tt.code {
				t.Fatalf("Code = %q, want %q", tt.err.Code, tt.code)
			}
		})
	}
}

func TestFromUnwrapsThroughChain(t *testing.T) {
	base := NotFound("challenge %s not found", "abc")
	wrapped := fmt.Errorf("resolve: %w", base)

	got := From(wrapped)
	if got.Status != http.StatusNotFound || got.Code != CodeNotFound {
		t.Fatalf("From lost the typed error: %+v", got)
	}
	if !HasCode(wrapped, CodeNotFound) {
		t.Fatal("HasCode missed wrapped error")
	}
}

func TestFromDefaultsToInternal(t *testing.T) {
	got := From(errors.New("disk on fire"))
	if got.Status != http.StatusInternalServerError || got.Code != CodeInternal {
		t.Fatalf("plain error should map to internal, got %+v", got)
	}
	if HasCode(errors.New("x"), CodeInternal) {
		t.Fatal("HasCode should be false for untyped errors")
	}
}
