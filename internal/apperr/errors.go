package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrIntegrity  = errors.New("integrity violation")
)

// NotFound envuelve ErrNotFound con un mensaje legible ("animal 7 not found").
func NotFound(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Validation envuelve ErrValidation con un mensaje legible.
func Validation(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Invalid convierte un error de validación (p.ej. validation.Errors de ozzo) en ErrValidation.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: ErrValidation, msg: err.Error(), cause: err}
}

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

func (e *kindError) Unwrap() error { return e.cause }

// MissingServicesError enumera todos los servicios pedidos que no existen en el catálogo.
// Es NotFound respecto al catálogo y Validation respecto a la reserva.
type MissingServicesError struct {
	IDs []int64
}

func NewMissingServices(ids []int64) *MissingServicesError {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return &MissingServicesError{IDs: out}
}

func (e *MissingServicesError) Error() string {
	parts := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return "services not found: " + strings.Join(parts, ", ")
}

func (e *MissingServicesError) Is(target error) bool {
	return target == ErrValidation || target == ErrNotFound
}

// IntegrityError es una violación de constraint del storage (FK, unique, check).
type IntegrityError struct {
	Code       string // SQLSTATE
	Constraint string
	Message    string
	Err        error
}

func (e *IntegrityError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Constraint != "" {
		return "constraint violation: " + e.Constraint
	}
	return "constraint violation"
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

func (e *IntegrityError) Unwrap() error { return e.Err }
