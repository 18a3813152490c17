package postgres

import (
	"errors"

	"petshop-api/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE de integridad que se traducen a apperr.IntegrityError.
const (
	codeForeignKey = "23503"
	codeUnique     = "23505"
	codeCheck      = "23514"
)

var constraintMessages = map[string]string{
	"animals_client_id_fkey":               "referenced client does not exist",
	"appointments_animal_id_fkey":          "referenced animal does not exist",
	"appointments_employee_id_fkey":        "referenced employee does not exist",
	"appointment_services_pkey":            "service listed twice in the same appointment",
	"appointment_services_service_id_fkey": "referenced service does not exist",
	"clients_email_key":                    "email already registered",
	"employees_email_key":                  "email already registered",
	"services_name_key":                    "a service with this name already exists",
	"services_price_check":                 "price must not be negative",
	"services_duration_minutes_check":      "duration must be positive",
	"appointments_status_check":            "invalid appointment status",
}

var codeMessages = map[string]string{
	codeForeignKey: "referenced record does not exist",
	codeUnique:     "duplicate value",
	codeCheck:      "value violates a check constraint",
}

// mapError clasifica violaciones de constraint; el resto pasa tal cual (StorageError).
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	generic, ok := codeMessages[pgErr.Code]
	if !ok {
		return err
	}

	msg := constraintMessages[pgErr.ConstraintName]
	if msg == "" {
		msg = generic
	}
	return &apperr.IntegrityError{
		Code:       pgErr.Code,
		Constraint: pgErr.ConstraintName,
		Message:    msg,
		Err:        err,
	}
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKey
}
