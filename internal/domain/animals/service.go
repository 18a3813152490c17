package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Service struct {
	repo    Repository
	clients ClientChecker
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, clients ClientChecker, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		clients: clients,
		log:     log,
		now:     time.Now,
	}
}

type CreateInput struct {
	ClientID  int64
	Name      string
	Species   string
	Breed     *string
	BirthDate *time.Time
	Notes     *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Animal, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.TrimSpace(in.Species)

	err := validation.Errors{
		"client_id":  validation.Validate(in.ClientID, validation.Required, validation.Min(int64(1))),
		"name":       validation.Validate(in.Name, validation.Required, validation.Length(1, 100)),
		"species":    validation.Validate(in.Species, validation.Required, validation.Length(1, 50)),
		"breed":      validation.Validate(in.Breed, validation.Length(0, 50)),
		"birth_date": validation.Validate(in.BirthDate, validation.By(s.notInFuture)),
	}.Filter()
	if err != nil {
		return Animal{}, apperr.Invalid(err)
	}

	if err := s.ensureClient(ctx, in.ClientID); err != nil {
		return Animal{}, err
	}

	a, err := s.repo.Create(ctx, Animal{
		ClientID:  in.ClientID,
		Name:      in.Name,
		Species:   in.Species,
		Breed:     in.Breed,
		BirthDate: in.BirthDate,
		Notes:     in.Notes,
	})
	if err != nil {
		return Animal{}, err
	}
	logger.FromContext(ctx, s.log).Info("animal created", logger.Fields{"animal_id": a.ID, "client_id": a.ClientID})
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Animal, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return Animal{}, apperr.NotFound("animal %d not found", id)
	}
	return a, err
}

// Exists lo usa appointments antes de crear o mover una reserva.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List con ClientID valida primero que el cliente exista (404 si no).
func (s *Service) List(ctx context.Context, f ListFilter) ([]Animal, error) {
	if f.ClientID != nil {
		if err := s.ensureClient(ctx, *f.ClientID); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Animal, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	if p.IsEmpty() {
		return current, nil
	}

	errs := validation.Errors{}
	if p.Name.Set {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
		if p.Name.Null {
			errs["name"] = errors.New("cannot be null")
		} else {
			errs["name"] = validation.Validate(p.Name.Value, validation.Required, validation.Length(1, 100))
		}
	}
	if p.Species.Set {
		p.Species.Value = strings.TrimSpace(p.Species.Value)
		if p.Species.Null {
			errs["species"] = errors.New("cannot be null")
		} else {
			errs["species"] = validation.Validate(p.Species.Value, validation.Required, validation.Length(1, 50))
		}
	}
	if p.Breed.HasValue() {
		errs["breed"] = validation.Validate(p.Breed.Value, validation.Length(0, 50))
	}
	if p.BirthDate.HasValue() {
		errs["birth_date"] = validation.Validate(p.BirthDate.Value, validation.By(s.notInFuture))
	}
	if err := errs.Filter(); err != nil {
		return Animal{}, apperr.Invalid(err)
	}

	a, err := s.repo.Update(ctx, id, p)
	if errors.Is(err, apperr.ErrNotFound) {
		return Animal{}, apperr.NotFound("animal %d not found", id)
	}
	return a, err
}

// Delete borra el animal y, en cascada, sus reservas.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("animal %d not found", id)
	}
	logger.FromContext(ctx, s.log).Info("animal deleted", logger.Fields{"animal_id": id})
	return nil
}

func (s *Service) notInFuture(value any) error {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return nil
		}
		t = *v
	default:
		return nil
	}
	if t.After(s.now()) {
		return errors.New("must not be in the future")
	}
	return nil
}
