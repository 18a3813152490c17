package clients

import (
	"context"
	"errors"
	"strings"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var errNotNull = errors.New("cannot be null")

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
	Name    string
	Phone   string
	Email   string
	Address *string
}

func nameRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(3, 255)}
}

func phoneRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(1, 20)}
}

func emailRules() []validation.Rule {
	return []validation.Rule{validation.Required, is.EmailFormat}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Client, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = normalizeEmail(in.Email)

	err := validation.Errors{
		"name":    validation.Validate(in.Name, nameRules()...),
		"phone":   validation.Validate(in.Phone, phoneRules()...),
		"email":   validation.Validate(in.Email, emailRules()...),
		"address": validation.Validate(in.Address, validation.Length(0, 500)),
	}.Filter()
	if err != nil {
		return Client{}, apperr.Invalid(err)
	}

	if err := s.ensureEmailFree(ctx, in.Email, 0); err != nil {
		return Client{}, err
	}

	c, err := s.repo.Create(ctx, Client{
		Name:    in.Name,
		Phone:   in.Phone,
		Email:   in.Email,
		Address: in.Address,
	})
	if err != nil {
		return Client{}, err
	}
	logger.FromContext(ctx, s.log).Info("client created", logger.Fields{"client_id": c.ID})
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return Client{}, apperr.NotFound("client %d not found", id)
	}
	return c, err
}

// Exists se usa desde animals para validar la referencia al dueño.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) FindByEmail(ctx context.Context, email string) (Client, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]Client, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Client, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Client{}, err
	}
	if p.IsEmpty() {
		return current, nil
	}

	errs := validation.Errors{}
	if p.Name.Set {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
		errs["name"] = requiredField(p.Name.Null, p.Name.Value, nameRules()...)
	}
	if p.Phone.Set {
		p.Phone.Value = strings.TrimSpace(p.Phone.Value)
		errs["phone"] = requiredField(p.Phone.Null, p.Phone.Value, phoneRules()...)
	}
	if p.Email.Set {
		p.Email.Value = normalizeEmail(p.Email.Value)
		errs["email"] = requiredField(p.Email.Null, p.Email.Value, emailRules()...)
	}
	if p.Address.HasValue() {
		errs["address"] = validation.Validate(p.Address.Value, validation.Length(0, 500))
	}
	if err := errs.Filter(); err != nil {
		return Client{}, apperr.Invalid(err)
	}

	if p.Email.HasValue() && p.Email.Value != current.Email {
		if err := s.ensureEmailFree(ctx, p.Email.Value, id); err != nil {
			return Client{}, err
		}
	}

	c, err := s.repo.Update(ctx, id, p)
	if errors.Is(err, apperr.ErrNotFound) {
		return Client{}, apperr.NotFound("client %d not found", id)
	}
	return c, err
}

// Delete borra el cliente; sus animales y reservas caen en cascada.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("client %d not found", id)
	}
	logger.FromContext(ctx, s.log).Info("client deleted", logger.Fields{"client_id": id})
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return &apperr.IntegrityError{Constraint: "clients_email_key", Message: "email already registered"}
	}
	return nil
}

func requiredField(isNull bool, v string, rules ...validation.Rule) error {
	if isNull {
		return errNotNull
	}
	return validation.Validate(v, rules...)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
