package catalog

import (
	"context"
	"errors"
	"strings"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// numeric(10,2)
var maxPrice = decimal.RequireFromString("99999999.99")

type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log}
}

type CreateInput struct {
	Name            string
	Description     *string
	Price           decimal.Decimal
	DurationMinutes int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	err := validation.Errors{
		"name":             validation.Validate(in.Name, validation.Required, validation.Length(1, 150)),
		"price":            validation.Validate(in.Price, validation.By(priceRule)),
		"duration_minutes": validation.Validate(in.DurationMinutes, validation.Required, validation.Min(1)),
	}.Filter()
	if err != nil {
		return Item{}, apperr.Invalid(err)
	}

	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return Item{}, err
	}

	it, err := s.repo.Create(ctx, Item{
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price.Round(2),
		DurationMinutes: in.DurationMinutes,
	})
	if err != nil {
		return Item{}, err
	}
	logger.FromContext(ctx, s.log).Info("service created", logger.Fields{"service_id": it.ID})
	return it, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return Item{}, apperr.NotFound("service %d not found", id)
	}
	return it, err
}

func (s *Service) FindByName(ctx context.Context, name string) (Item, error) {
	return s.repo.FindByName(ctx, strings.TrimSpace(name))
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]Item, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Item, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
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
			errs["name"] = validation.Validate(p.Name.Value, validation.Required, validation.Length(1, 150))
		}
	}
	if p.Price.Set {
		if p.Price.Null {
			errs["price"] = errors.New("cannot be null")
		} else {
			errs["price"] = validation.Validate(p.Price.Value, validation.By(priceRule))
			p.Price.Value = p.Price.Value.Round(2)
		}
	}
	if p.DurationMinutes.Set {
		if p.DurationMinutes.Null {
			errs["duration_minutes"] = errors.New("cannot be null")
		} else {
			errs["duration_minutes"] = validation.Validate(p.DurationMinutes.Value, validation.Required, validation.Min(1))
		}
	}
	if err := errs.Filter(); err != nil {
		return Item{}, apperr.Invalid(err)
	}

	if p.Name.HasValue() && p.Name.Value != current.Name {
		if err := s.ensureNameFree(ctx, p.Name.Value, id); err != nil {
			return Item{}, err
		}
	}

	it, err := s.repo.Update(ctx, id, p)
	if errors.Is(err, apperr.ErrNotFound) {
		return Item{}, apperr.NotFound("service %d not found", id)
	}
	if err != nil {
		return Item{}, err
	}
	if p.Price.HasValue() && !p.Price.Value.Equal(current.Price) {
		logger.FromContext(ctx, s.log).Info("service price changed", logger.Fields{
			"service_id": id,
			"from":       current.Price.StringFixed(2),
			"to":         it.Price.StringFixed(2),
		})
	}
	return it, nil
}

// Delete falla con IntegrityError si el servicio figura en alguna reserva.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("service %d not found", id)
	}
	return nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return &apperr.IntegrityError{Constraint: "services_name_key", Message: "a service with this name already exists"}
	}
	return nil
}

func priceRule(value any) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal")
	}
	if d.IsNegative() {
		return errors.New("must be no less than 0")
	}
	if !d.Equal(d.Round(2)) {
		return errors.New("must have at most 2 decimal places")
	}
	if d.GreaterThan(maxPrice) {
		return errors.New("is too large")
	}
	return nil
}
