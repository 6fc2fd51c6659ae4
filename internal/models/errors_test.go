package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorsMatchTheirKind(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{NotFoundf("fixture %d not found", 3), ErrNotFound},
		{InvalidInputf("bad"), ErrInvalidInput},
		{InvalidStatef("bad"), ErrInvalidState},
		{Conflictf("bad"), ErrConflict},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.kind) {
			t.Errorf("%v should match %v", tt.err, tt.kind)
		}
		wrapped := fmt.Errorf("service: %w", tt.err)
		if !errors.Is(wrapped, tt.kind) {
			t.Errorf("wrapped %v should match %v", wrapped, tt.kind)
		}
	}
}

func TestPublicMessage(t *testing.T) {
	err := fmt.Errorf("create: %w", NotFoundf("Fixture %d not found", 7))
	if got := PublicMessage(err); got != "Fixture 7 not found" {
		t.Fatalf("PublicMessage() = %q", got)
	}
	if got := PublicMessage(errors.New("boom")); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}
}

func TestParseRoleAndStatus(t *testing.T) {
	if role, ok := ParseRole(" admin "); !ok || role != RoleAdmin {
		t.Fatalf("ParseRole(admin) = %q, %v", role, ok)
	}
	if _, ok := ParseRole("REFEREE"); ok {
		t.Fatal("REFEREE must not parse as a role")
	}
	if status, ok := ParseFixtureStatus("completed"); !ok || status != FixtureCompleted {
		t.Fatalf("ParseFixtureStatus(completed) = %q, %v", status, ok)
	}
	if _, ok := ParseFixtureStatus("Cancelled"); ok {
		t.Fatal("Cancelled must not parse as a status")
	}
}
