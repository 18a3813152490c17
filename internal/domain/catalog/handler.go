package catalog

import (
	"net/http"

	"petshop-api/internal/platform/httpx"
	"petshop-api/internal/platform/logger"
	"petshop-api/internal/platform/patch"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/services", func(sr chi.Router) {
		sr.Post("/", createServiceHandler(svc, log))
		sr.Get("/", listServicesHandler(svc, log))

		sr.Get("/{serviceID}", getServiceHandler(svc, log))
		sr.Put("/{serviceID}", updateServiceHandler(svc, log))
		sr.Patch("/{serviceID}", updateServiceHandler(svc, log))
		sr.Delete("/{serviceID}", deleteServiceHandler(svc, log))
	})
}

// createServiceRequest: price acepta número o string ("50.00").
type createServiceRequest struct {
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
}

type updateServiceRequest struct {
	Name            patch.Field[string]          `json:"name"`
	Description     patch.Field[string]          `json:"description"`
	Price           patch.Field[decimal.Decimal] `json:"price"`
	DurationMinutes patch.Field[int]             `json:"duration_minutes"`
}

// serviceResponse: price siempre con 2 decimales.
type serviceResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Price           string  `json:"price" example:"50.00"`
	DurationMinutes int     `json:"duration_minutes"`
}

// createServiceHandler godoc
// @Summary Crear servicio del catálogo
// @Tags services
// @Accept json
// @Produce json
// @Param payload body createServiceRequest true "Servicio"
// @Success 201 {object} serviceResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse "nombre duplicado"
// @Router /services [post]
func createServiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createServiceRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		it, err := svc.Create(r.Context(), CreateInput{
			Name:            req.Name,
			Description:     req.Description,
			Price:           req.Price,
			DurationMinutes: req.DurationMinutes,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toServiceResponse(it))
	}
}

func listServicesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit, err := httpx.Page(r)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		items, err := svc.List(r.Context(), offset, limit)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		out := make([]serviceResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toServiceResponse(it))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getServiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "serviceID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		it, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toServiceResponse(it))
	}
}

func updateServiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "serviceID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		var req updateServiceRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		it, err := svc.Update(r.Context(), id, Patch{
			Name:            req.Name,
			Description:     req.Description,
			Price:           req.Price,
			DurationMinutes: req.DurationMinutes,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toServiceResponse(it))
	}
}

// deleteServiceHandler godoc
// @Summary Borrar servicio
// @Description Falla con 409 si el servicio está asociado a reservas.
// @Tags services
// @Param serviceID path int true "ID del servicio"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /services/{serviceID} [delete]
func deleteServiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "serviceID")
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

func toServiceResponse(it Item) serviceResponse {
	return serviceResponse{
		ID:              it.ID,
		Name:            it.Name,
		Description:     it.Description,
		Price:           it.Price.StringFixed(2),
		DurationMinutes: it.DurationMinutes,
	}
}
