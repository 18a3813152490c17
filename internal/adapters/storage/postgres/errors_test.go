package postgres

import (
	"errors"
	"fmt"
	"testing"

	"petshop-api/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError_KnownConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: codeUnique, ConstraintName: "clients_email_key"}

	err := mapError(fmt.Errorf("insert: %w", pgErr))

	var ie *apperr.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IntegrityError, got %T", err)
	}
	if ie.Message != "email already registered" || ie.Constraint != "clients_email_key" || ie.Code != codeUnique {
		t.Fatalf("unexpected integrity error: %+v", ie)
	}
	if !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("expected errors.Is ErrIntegrity")
	}
}

func TestMapError_UnknownConstraintFallsBackToCode(t *testing.T) {
	err := mapError(&pgconn.PgError{Code: codeCheck, ConstraintName: "something_new_check"})

	if err.Error() != "value violates a check constraint" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestMapError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("connection refused")
	if got := mapError(plain); got != plain {
		t.Fatalf("expected storage error untouched, got %v", got)
	}

	syntax := &pgconn.PgError{Code: "42601"}
	if got := mapError(syntax); errors.Is(got, apperr.ErrIntegrity) {
		t.Fatalf("syntax errors are not integrity errors")
	}

	if mapError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !isForeignKeyViolation(fmt.Errorf("delete: %w", &pgconn.PgError{Code: codeForeignKey})) {
		t.Fatalf("expected wrapped FK violation detected")
	}
	if isForeignKeyViolation(&pgconn.PgError{Code: codeUnique}) {
		t.Fatalf("unique violation is not an FK violation")
	}
}
