package employees

import (
	"net/http"
	"time"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/httpx"
	"petshop-api/internal/platform/logger"
	"petshop-api/internal/platform/patch"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/employees", func(er chi.Router) {
		er.Post("/", createEmployeeHandler(svc, log))
		er.Get("/", listEmployeesHandler(svc, log))

		er.Get("/{employeeID}", getEmployeeHandler(svc, log))
		er.Put("/{employeeID}", updateEmployeeHandler(svc, log))
		er.Patch("/{employeeID}", updateEmployeeHandler(svc, log))
		er.Delete("/{employeeID}", deleteEmployeeHandler(svc, log))
	})
}

type createEmployeeRequest struct {
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	HiredOn string  `json:"hired_on"` // YYYY-MM-DD
	Active  *bool   `json:"active"`
}

type updateEmployeeRequest struct {
	Name    patch.Field[string] `json:"name"`
	Role    patch.Field[string] `json:"role"`
	Phone   patch.Field[string] `json:"phone"`
	Email   patch.Field[string] `json:"email"`
	HiredOn patch.Field[string] `json:"hired_on"`
	Active  patch.Field[bool]   `json:"active"`
}

type employeeResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	HiredOn string  `json:"hired_on"`
	Active  bool    `json:"active"`
}

// createEmployeeHandler godoc
// @Summary Alta de empleado
// @Tags employees
// @Accept json
// @Produce json
// @Param body body createEmployeeRequest true "Empleado"
// @Success 201 {object} employeeResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /employees [post]
func createEmployeeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEmployeeRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		if req.HiredOn == "" {
			httpx.WriteError(w, r, log, apperr.Validation("hired_on is required"))
			return
		}
		hired, err := httpx.Date("hired_on", &req.HiredOn)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		e, err := svc.Create(r.Context(), CreateInput{
			Name:    req.Name,
			Role:    req.Role,
			Phone:   req.Phone,
			Email:   req.Email,
			HiredOn: *hired,
			Active:  req.Active,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toEmployeeResponse(e))
	}
}

func listEmployeesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly, err := httpx.QueryBool(r, "active_only")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		offset, limit, err := httpx.Page(r)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		items, err := svc.List(r.Context(), ListFilter{ActiveOnly: activeOnly, Offset: offset, Limit: limit})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		out := make([]employeeResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEmployeeResponse(e))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getEmployeeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "employeeID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		e, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toEmployeeResponse(e))
	}
}

func updateEmployeeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "employeeID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		var req updateEmployeeRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		hired, err := httpx.DateField("hired_on", req.HiredOn)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		e, err := svc.Update(r.Context(), id, Patch{
			Name:    req.Name,
			Role:    req.Role,
			Phone:   req.Phone,
			Email:   req.Email,
			HiredOn: hired,
			Active:  req.Active,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toEmployeeResponse(e))
	}
}

func deleteEmployeeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "employeeID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toEmployeeResponse(e Employee) employeeResponse {
	return employeeResponse{
		ID:      e.ID,
		Name:    e.Name,
		Role:    e.Role,
		Phone:   e.Phone,
		Email:   e.Email,
		HiredOn: e.HiredOn.UTC().Format(time.DateOnly),
		Active:  e.Active,
	}
}
