package employees

import (
	"context"
	"errors"
	"strings"
	"time"

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
	Role    string
	Phone   *string
	Email   *string
	HiredOn time.Time
	// nil => activo
	Active *bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.Email = normalizeEmail(in.Email)

	err := validation.Errors{
		"name":     validation.Validate(in.Name, validation.Required, validation.Length(3, 255)),
		"role":     validation.Validate(in.Role, validation.Required, validation.Length(1, 100)),
		"phone":    validation.Validate(in.Phone, validation.Length(0, 20)),
		"email":    validation.Validate(in.Email, is.EmailFormat),
		"hired_on": validation.Validate(in.HiredOn, validation.Required),
	}.Filter()
	if err != nil {
		return Employee{}, apperr.Invalid(err)
	}

	if in.Email != nil {
		if err := s.ensureEmailFree(ctx, *in.Email, 0); err != nil {
			return Employee{}, err
		}
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	e, err := s.repo.Create(ctx, Employee{
		Name:    in.Name,
		Role:    in.Role,
		Phone:   in.Phone,
		Email:   in.Email,
		HiredOn: in.HiredOn,
		Active:  active,
	})
	if err != nil {
		return Employee{}, err
	}
	logger.FromContext(ctx, s.log).Info("employee created", logger.Fields{"employee_id": e.ID})
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return Employee{}, apperr.NotFound("employee %d not found", id)
	}
	return e, err
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) FindByEmail(ctx context.Context, email string) (Employee, error) {
	return s.repo.FindByEmail(ctx, lowerTrim(email))
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Employee, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Employee, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if p.IsEmpty() {
		return current, nil
	}

	errs := validation.Errors{}
	if p.Name.Set {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
		if p.Name.Null {
			errs["name"] = errNotNull
		} else {
			errs["name"] = validation.Validate(p.Name.Value, validation.Required, validation.Length(3, 255))
		}
	}
	if p.Role.Set {
		p.Role.Value = strings.TrimSpace(p.Role.Value)
		if p.Role.Null {
			errs["role"] = errNotNull
		} else {
			errs["role"] = validation.Validate(p.Role.Value, validation.Required, validation.Length(1, 100))
		}
	}
	if p.Phone.HasValue() {
		errs["phone"] = validation.Validate(p.Phone.Value, validation.Length(0, 20))
	}
	if p.Email.HasValue() {
		p.Email.Value = lowerTrim(p.Email.Value)
		errs["email"] = validation.Validate(p.Email.Value, validation.Required, is.EmailFormat)
	}
	if p.HiredOn.Set && p.HiredOn.Null {
		errs["hired_on"] = errNotNull
	}
	if p.Active.Set && p.Active.Null {
		errs["active"] = errNotNull
	}
	if err := errs.Filter(); err != nil {
		return Employee{}, apperr.Invalid(err)
	}

	if p.Email.HasValue() && (current.Email == nil || *current.Email != p.Email.Value) {
		if err := s.ensureEmailFree(ctx, p.Email.Value, id); err != nil {
			return Employee{}, err
		}
	}

	e, err := s.repo.Update(ctx, id, p)
	if errors.Is(err, apperr.ErrNotFound) {
		return Employee{}, apperr.NotFound("employee %d not found", id)
	}
	if err != nil {
		return Employee{}, err
	}
	if p.Active.Set && current.Active != e.Active {
		logger.FromContext(ctx, s.log).Info("employee active changed", logger.Fields{
			"employee_id": id,
			"active":      e.Active,
		})
	}
	return e, nil
}

// Delete: las reservas del empleado quedan sin asignar (employee_id = NULL).
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("employee %d not found", id)
	}
	logger.FromContext(ctx, s.log).Info("employee deleted", logger.Fields{"employee_id": id})
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
		return &apperr.IntegrityError{Constraint: "employees_email_key", Message: "email already registered"}
	}
	return nil
}

// normalizeEmail trata "" como ausente.
func normalizeEmail(s *string) *string {
	if s == nil {
		return nil
	}
	v := lowerTrim(*s)
	if v == "" {
		return nil
	}
	return &v
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
