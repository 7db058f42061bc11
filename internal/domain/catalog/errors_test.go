package catalog

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NotFound("menu.get", "menu not found")
	if got := err.Error(); got != "menu.get: menu not found (not_found)" {
		t.Fatalf("Error(): got %q", got)
	}
	if got := (&Error{Code: CodeInternal}).Error(); got != "internal" {
		t.Fatalf("bare Error(): got %q", got)
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	base := ConstraintViolation("submenu.create", "menu does not exist", errors.New("fk"))
	wrapped := fmt.Errorf("handler: %w", base)
	if !IsCode(wrapped, CodeConstraintViolation) {
		t.Fatalf("expected constraint_violation through fmt wrapping, got %q", CodeOf(wrapped))
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Fatalf("plain error must not carry a code")
	}
	if CodeOf(nil) != "" {
		t.Fatalf("CodeOf(nil) should be empty")
	}
}

func TestSyncErrorCarriesCommitState(t *testing.T) {
	cause := errors.New("redis down")
	err := SyncError("reconcile.swap", true, cause)

	var catErr *Error
	if !errors.As(err, &catErr) {
		t.Fatalf("expected *Error")
	}
	if !catErr.Committed {
		t.Fatalf("expected Committed=true")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
}
