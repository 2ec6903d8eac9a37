package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeForbidden, http.StatusForbidden},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeLimitReached, http.StatusPaymentRequired},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "load garage")
	if err.Unwrap() != cause {
		t.Fatalf("expected cause preserved")
	}
	if !HasCode(err, CodeDependency) {
		t.Fatalf("expected dependency code")
	}
}

func TestAsThroughWrappedChain(t *testing.T) {
	inner := New(CodeStateConflict, "car already sold")
	outer := fmt.Errorf("sell: %w", inner)
	typed := As(outer)
	if typed == nil || typed.Code() != CodeStateConflict {
		t.Fatalf("expected typed error through chain, got %v", typed)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"name": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["name"] != "is required" {
		t.Fatalf("details not carried: %v", err.Details())
	}
}

func TestStateConflictCarriesReason(t *testing.T) {
	err := StateConflict("expired", "invitation expired")
	if !HasCode(err, CodeStateConflict) {
		t.Fatalf("expected state conflict code, got %v", err)
	}
	if got := ConflictReason(err); got != "expired" {
		t.Fatalf("ConflictReason = %q, want %q", got, "expired")
	}

	// Extra detail keys coexist with the reason.
	withCount := StateConflict("has_dependent_resources", "garage still has cars").WithDetail("cars", 3)
	if got := ConflictReason(withCount); got != "has_dependent_resources" {
		t.Fatalf("ConflictReason = %q, want %q", got, "has_dependent_resources")
	}
	details, ok := withCount.Details().(map[string]any)
	if !ok || details["cars"] != 3 {
		t.Fatalf("expected cars detail kept, got %v", withCount.Details())
	}

	wrapped := fmt.Errorf("accept: %w", StateConflict("already_resolved", "invitation already resolved"))
	if got := ConflictReason(wrapped); got != "already_resolved" {
		t.Fatalf("ConflictReason through chain = %q, want %q", got, "already_resolved")
	}

	if got := ConflictReason(New(CodeStateConflict, "no reason attached")); got != "" {
		t.Fatalf("expected empty reason, got %q", got)
	}
}
