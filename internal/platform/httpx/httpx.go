// Package httpx junta los helpers HTTP compartidos por los handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/logger"
	"petshop-api/internal/platform/patch"

	"github.com/go-chi/chi/v5"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// StatusFor traduce la taxonomía de apperr a códigos HTTP.
// Validation se evalúa antes que NotFound: un servicio inexistente en una reserva es 400.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrIntegrity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError escribe err con su status; los 5xx se loguean y no exponen detalle.
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), log).Error("request failed", logger.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"err":    err,
		})
		Error(w, status, "internal error")
		return
	}
	Error(w, status, err.Error())
}

// Decode lee un body JSON rechazando campos desconocidos.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid json: %v", err)
	}
	return nil
}

// PathID parsea un id numérico de la ruta.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("%s must be a positive integer", name)
	}
	return id, nil
}

// Page devuelve skip/limit con defaults (0, 100) y limit acotado a MaxLimit.
func Page(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()
	offset, limit = 0, DefaultLimit

	if v := strings.TrimSpace(q.Get("skip")); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			return 0, 0, apperr.Validation("skip must be a non-negative integer")
		}
		offset = n
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n <= 0 {
			return 0, 0, apperr.Validation("limit must be a positive integer")
		}
		limit = n
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return offset, limit, nil
}

// QueryInt64 devuelve nil si el parámetro no vino.
func QueryInt64(r *http.Request, name string) (*int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, apperr.Validation("%s must be an integer", name)
	}
	return &n, nil
}

// QueryTime acepta RFC3339 o YYYY-MM-DD.
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	t, err := ParseTime(v)
	if err != nil {
		return nil, apperr.Validation("%s must be RFC3339 or YYYY-MM-DD", name)
	}
	return &t, nil
}

func QueryBool(r *http.Request, name string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperr.Validation("%s must be a boolean", name)
	}
	return b, nil
}

func ParseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", v, err)
	}
	return t, nil
}

const DateLayout = "2006-01-02"

// Date parsea un campo opcional del body (RFC3339 o YYYY-MM-DD).
func Date(name string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := ParseTime(strings.TrimSpace(*v))
	if err != nil {
		return nil, apperr.Validation("%s must be RFC3339 or YYYY-MM-DD", name)
	}
	return &t, nil
}

// DateField convierte un patch de string a fecha conservando Set/Null.
func DateField(name string, f patch.Field[string]) (patch.Field[time.Time], error) {
	if !f.HasValue() {
		return patch.Field[time.Time]{Set: f.Set, Null: f.Null}, nil
	}
	t, err := Date(name, &f.Value)
	if err != nil {
		return patch.Field[time.Time]{}, err
	}
	return patch.Value(*t), nil
}
