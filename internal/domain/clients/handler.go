package clients

import (
	"net/http"
	"time"

	"petshop-api/internal/platform/httpx"
	"petshop-api/internal/platform/logger"
	"petshop-api/internal/platform/patch"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/clients", func(cr chi.Router) {
		cr.Post("/", createClientHandler(svc, log))
		cr.Get("/", listClientsHandler(svc, log))

		cr.Get("/{clientID}", getClientHandler(svc, log))
		cr.Put("/{clientID}", updateClientHandler(svc, log))
		cr.Patch("/{clientID}", updateClientHandler(svc, log))
		cr.Delete("/{clientID}", deleteClientHandler(svc, log))
	})
}

type createClientRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	Address *string `json:"address"`
}

type updateClientRequest struct {
	Name    patch.Field[string] `json:"name"`
	Phone   patch.Field[string] `json:"phone"`
	Email   patch.Field[string] `json:"email"`
	Address patch.Field[string] `json:"address"`
}

type clientResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      *string   `json:"address"`
	RegisteredAt time.Time `json:"registered_at"`
}

func createClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createClientRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		c, err := svc.Create(r.Context(), CreateInput{
			Name:    req.Name,
			Phone:   req.Phone,
			Email:   req.Email,
			Address: req.Address,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toClientResponse(c))
	}
}

func listClientsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
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

		out := make([]clientResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toClientResponse(c))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "clientID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		c, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toClientResponse(c))
	}
}

func updateClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "clientID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		var req updateClientRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		c, err := svc.Update(r.Context(), id, Patch{
			Name:    req.Name,
			Phone:   req.Phone,
			Email:   req.Email,
			Address: req.Address,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toClientResponse(c))
	}
}

func deleteClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "clientID")
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

func toClientResponse(c Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		RegisteredAt: c.RegisteredAt,
	}
}
