package animals

import (
	"net/http"
	"time"

	"petshop-api/internal/platform/httpx"
	"petshop-api/internal/platform/logger"
	"petshop-api/internal/platform/patch"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc, log))
		ar.Get("/", listAnimalsHandler(svc, log))

		ar.Get("/{animalID}", getAnimalHandler(svc, log))
		ar.Put("/{animalID}", updateAnimalHandler(svc, log))
		ar.Patch("/{animalID}", updateAnimalHandler(svc, log))
		ar.Delete("/{animalID}", deleteAnimalHandler(svc, log))
	})
}

type createAnimalRequest struct {
	ClientID  int64   `json:"client_id"`
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     *string `json:"breed"`
	BirthDate *string `json:"birth_date"` // YYYY-MM-DD
	Notes     *string `json:"notes"`
}

type updateAnimalRequest struct {
	Name      patch.Field[string] `json:"name"`
	Species   patch.Field[string] `json:"species"`
	Breed     patch.Field[string] `json:"breed"`
	BirthDate patch.Field[string] `json:"birth_date"`
	Notes     patch.Field[string] `json:"notes"`
}

type animalResponse struct {
	ID        int64   `json:"id"`
	ClientID  int64   `json:"client_id"`
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     *string `json:"breed"`
	BirthDate *string `json:"birth_date"`
	Notes     *string `json:"notes"`
}

// createAnimalHandler godoc
// @Summary Registrar animal
// @Tags animals
// @Accept json
// @Produce json
// @Param body body createAnimalRequest true "Animal"
// @Success 201 {object} animalResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals [post]
func createAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAnimalRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		birth, err := httpx.Date("birth_date", req.BirthDate)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		a, err := svc.Create(r.Context(), CreateInput{
			ClientID:  req.ClientID,
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			BirthDate: birth,
			Notes:     req.Notes,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// listAnimalsHandler godoc
// @Summary Listar animales
// @Tags animals
// @Produce json
// @Param client_id query int false "Filtrar por dueño"
// @Param skip query int false "Offset"
// @Param limit query int false "Límite (max 500)"
// @Success 200 {array} animalResponse
// @Router /animals [get]
func listAnimalsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := httpx.QueryInt64(r, "client_id")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		offset, limit, err := httpx.Page(r)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		items, err := svc.List(r.Context(), ListFilter{ClientID: clientID, Offset: offset, Limit: limit})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "animalID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		a, err := svc.GetByID(r.Context(), id)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "animalID")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		var req updateAnimalRequest
		if err := httpx.Decode(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		birth, err := httpx.DateField("birth_date", req.BirthDate)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		a, err := svc.Update(r.Context(), id, Patch{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			BirthDate: birth,
			Notes:     req.Notes,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// deleteAnimalHandler godoc
// @Summary Borrar animal (y sus reservas)
// @Tags animals
// @Param animalID path int true "Animal ID"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /animals/{animalID} [delete]
func deleteAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.PathID(r, "animalID")
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

func toAnimalResponse(a Animal) animalResponse {
	var birth *string
	if a.BirthDate != nil {
		s := a.BirthDate.UTC().Format(time.DateOnly)
		birth = &s
	}
	return animalResponse{
		ID:        a.ID,
		ClientID:  a.ClientID,
		Name:      a.Name,
		Species:   a.Species,
		Breed:     a.Breed,
		BirthDate: birth,
		Notes:     a.Notes,
	}
}
