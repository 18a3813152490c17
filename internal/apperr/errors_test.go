package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestMissingServices_SortedAndClassified(t *testing.T) {
	err := NewMissingServices([]int64{9, 3, 5})

	if got := err.Error(); got != "services not found: 3, 5, 9" {
		t.Fatalf("unexpected message: %q", got)
	}
	if !errors.Is(err, ErrValidation) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected missing services to match validation and not found")
	}
	if errors.Is(err, ErrIntegrity) {
		t.Fatalf("missing services must not be an integrity error")
	}

	var target *MissingServicesError
	wrapped := fmt.Errorf("create appointment: %w", err)
	if !errors.As(wrapped, &target) || len(target.IDs) != 3 {
		t.Fatalf("expected errors.As to recover ids through wrapping")
	}
}

func TestIntegrityError_UnwrapsCause(t *testing.T) {
	cause := errors.New("pg: fk")
	err := &IntegrityError{Code: "23503", Constraint: "appointments_animal_id_fkey", Message: "referenced animal does not exist", Err: cause}

	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if err.Error() != "referenced animal does not exist" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestKindErrors(t *testing.T) {
	if err := NotFound("animal %d not found", 7); !errors.Is(err, ErrNotFound) || err.Error() != "animal 7 not found" {
		t.Fatalf("unexpected not found error: %v", err)
	}
	if err := Validation("service_ids must not be empty"); !errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if Invalid(nil) != nil {
		t.Fatalf("Invalid(nil) must be nil")
	}
}
