package animals

import (
	"context"

	"petshop-api/internal/apperr"
)

// ClientChecker evita importar clients desde animals (clients.Service lo implementa).
type ClientChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

func (s *Service) ensureClient(ctx context.Context, clientID int64) error {
	ok, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("client %d not found", clientID)
	}
	return nil
}

// OwnerOf devuelve el cliente dueño del animal.
func (s *Service) OwnerOf(ctx context.Context, animalID int64) (int64, error) {
	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return 0, err
	}
	return a.ClientID, nil
}
