package appointments

import (
	"net/http"
	"time"

	"petshop-api/internal/platform/httpx"
	"petshop-api/internal/platform/logger"
	"petshop-api/internal/platform/patch"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", createAppointmentHandler(svc, log))
		ar.Get("/", listAppointmentsHandler(svc, log))

		ar.Get("/{appointmentID}", getAppointmentHandler(svc, log))
		ar.Put("/{appointmentID}", updateAppointmentHandler(svc, log))
		ar.Patch("/{appointmentID}", updateAppointmentHandler(svc, log))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc, log))
	})
}

type createAppointmentRequest struct {
	AnimalID    int64   `json:"animal_id"`
	EmployeeID  *int64  `json:"employee_id"`
	ScheduledAt string  `json:"scheduled_at"` // RFC3339
	Status      Status  `json:"status"`
	Notes       *string `json:"notes"`
	ServiceIDs  []int64 `json:"service_ids"`
}

type updateAppointmentRequest struct {
	AnimalID    patch.Field[int64]   `json:"animal_id"`
	EmployeeID  patch.Field[int64]   `json:"employee_id"`
	ScheduledAt patch.Field[string]  `json:"scheduled_at"`
	Status      patch.Field[Status]  `json:"status"`
	Notes       patch.Field[string]  `json:"notes"`
	ServiceIDs  patch.Field[[]int64] `json:"service_ids"`
}

type lineResponse struct {
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Price       string  `json:"price"`
	Notes       *string `json:"notes"`
}

type appointmentResponse struct {
	ID           int64          `json:"id"`
	AnimalID     int64          `json:"animal_id"`
	EmployeeID   *int64         `json:"employee_id"`
	ScheduledAt  time.Time      `json:"scheduled_at"`
	CreatedAt    time.Time      `json:"created_at"`
	Status       Status         `json:"status"`
	Notes        *string        `json:"notes"`
	AnimalName   string         `json:"animal_name"`
	ClientName   string         `json:"client_name"`
	EmployeeName *string        `json:"employee_name"`
	Total        string         `json:"total"`
	Services     []lineResponse `json:"services"`
}

// createAppointmentHandler godoc
// @Summary Crear reserva
// @Description Congela el precio actual de cada servicio. Todo o nada.
// @Tags appointments
// @Accept json
// @Produce json
// @Param body body createAppointmentRequest true "Reserva"
// @Success 201 {object} appointmentResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /appointments [post]
func createAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAppointmentRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		var scheduled time.Time
		if req.ScheduledAt != "" {
			t, err := httpx.Date("scheduled_at", &req.ScheduledAt)
			if err != nil {
				httpx.WriteError(w, r, log, err)
				return
			}
			scheduled = *t
		}

		a, err := svc.Create(r.Context(), Draft{
			AnimalID:    req.AnimalID,
			EmployeeID:  req.EmployeeID,
			ScheduledAt: scheduled,
			Status:      req.Status,
			Notes:       req.Notes,
			ServiceIDs:  req.ServiceIDs,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listAppointmentsHandler godoc
// @Summary Listar reservas
// @Description Filtros opcionales combinados con AND. Orden: scheduled_at desc.
// @Tags appointments
// @Produce json
// @Param animal_id query int false "Animal"
// @Param employee_id query int false "Empleado"
// @Param from query string false "Desde (inclusive)"
// @Param to query string false "Hasta (inclusive)"
// @Param status query string false "Estado"
// @Param skip query int false "Offset"
// @Param limit query int false "Límite (max 500)"
// @Success 200 {array} appointmentResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseListFilter(r)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentResponse(a))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var (
		f   ListFilter
		err error
	)
	if f.AnimalID, err = httpx.QueryInt64(r, "animal_id"); err != nil {
		return f, err
	}
	if f.EmployeeID, err = httpx.QueryInt64(r, "employee_id"); err != nil {
		return f, err
	}
	if f.From, err = httpx.QueryTime(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = httpx.QueryTime(r, "to"); err != nil {
		return f, err
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st := Status(v)
		f.Status = &st
	}
	f.Offset, f.Limit, err = httpx.Page(r)
	return f, err
}

// getAppointmentHandler godoc
// @Summary Obtener reserva
// @Description Incluye nombres de animal, cliente y empleado, líneas con precio congelado y total.
// @Tags appointments
// @Produce json
// @Param appointmentID path int true "Appointment ID"
// @Success 200 {object} appointmentResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /appointments/{appointmentID} [get]
func getAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "appointmentID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		a, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Actualizar reserva (parcial)
// @Description Solo cambian los campos enviados. service_ids reemplaza todas las líneas con precios actuales.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path int true "Appointment ID"
// @Param body body updateAppointmentRequest true "Campos a cambiar"
// @Success 200 {object} appointmentResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /appointments/{appointmentID} [patch]
func updateAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "appointmentID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		var req updateAppointmentRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		scheduled, err := httpx.DateField("scheduled_at", req.ScheduledAt)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		a, err := svc.Update(r.Context(), id, Patch{
			AnimalID:    req.AnimalID,
			EmployeeID:  req.EmployeeID,
			ScheduledAt: scheduled,
			Status:      req.Status,
			Notes:       req.Notes,
			ServiceIDs:  req.ServiceIDs,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// deleteAppointmentHandler godoc
// @Summary Borrar reserva
// @Description Borra la reserva y todas sus líneas en la misma transacción.
// @Tags appointments
// @Param appointmentID path int true "Appointment ID"
// @Success 204
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "appointmentID")
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

func toAppointmentResponse(a Appointment) appointmentResponse {
	lines := make([]lineResponse, 0, len(a.Lines))
	for _, l := range a.Lines {
		lines = append(lines, lineResponse{
			ServiceID:   l.ServiceID,
			ServiceName: l.ServiceName,
			Price:       l.Price.StringFixed(2),
			Notes:       l.Notes,
		})
	}

	var employeeName *string
	if a.EmployeeName != "" {
		n := a.EmployeeName
		employeeName = &n
	}

	return appointmentResponse{
		ID:           a.ID,
		AnimalID:     a.AnimalID,
		EmployeeID:   a.EmployeeID,
		ScheduledAt:  a.ScheduledAt,
		CreatedAt:    a.CreatedAt,
		Status:       a.Status,
		Notes:        a.Notes,
		AnimalName:   a.AnimalName,
		ClientName:   a.ClientName,
		EmployeeName: employeeName,
		Total:        a.Total.StringFixed(2),
		Services:     lines,
	}
}
