package appointments

import (
	"context"
	"errors"

	"petshop-api/internal/apperr"
	"petshop-api/internal/platform/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	errNotNull       = errors.New("cannot be null")
	errNoServices    = errors.New("an appointment must have at least one service")
	errInvalidStatus = errors.New("must be one of Scheduled, Confirmed, Cancelled, Completed, NoShow")
)

// ExistenceChecker lo implementan animals.Service y employees.Service.
type ExistenceChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo      Repository
	animals   ExistenceChecker
	employees ExistenceChecker
	log       logger.Logger
}

func NewService(repo Repository, animals, employees ExistenceChecker, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		animals:   animals,
		employees: employees,
		log:       log,
	}
}

var statusRule = validation.By(func(v any) error {
	var s Status
	switch t := v.(type) {
	case Status:
		s = t
	case *Status:
		if t == nil {
			return nil
		}
		s = *t
	}
	if !s.Valid() {
		return errInvalidStatus
	}
	return nil
})

var serviceIDsRule = validation.By(func(v any) error {
	ids, _ := v.([]int64)
	if len(ids) == 0 {
		return errNoServices
	}
	for _, id := range ids {
		if id <= 0 {
			return errors.New("service ids must be positive")
		}
	}
	return nil
})

func (s *Service) Create(ctx context.Context, d Draft) (Appointment, error) {
	if d.Status == "" {
		d.Status = StatusScheduled
	}

	err := validation.Errors{
		"animal_id":    validation.Validate(d.AnimalID, validation.Required, validation.Min(int64(1))),
		"employee_id":  validation.Validate(d.EmployeeID, validation.Min(int64(1))),
		"scheduled_at": validation.Validate(d.ScheduledAt, validation.Required),
		"status":       validation.Validate(d.Status, statusRule),
		"service_ids":  validation.Validate(d.ServiceIDs, serviceIDsRule),
	}.Filter()
	if err != nil {
		return Appointment{}, apperr.Invalid(err)
	}

	if err := s.ensureRefs(ctx, &d.AnimalID, d.EmployeeID); err != nil {
		return Appointment{}, err
	}
	d.ServiceIDs = UniqueIDs(d.ServiceIDs)

	a, err := s.repo.Create(ctx, d)
	if err != nil {
		return Appointment{}, err
	}
	logger.FromContext(ctx, s.log).Info("appointment created", logger.Fields{
		"appointment_id": a.ID,
		"animal_id":      a.AnimalID,
		"services":       len(a.Lines),
		"total":          a.Total.StringFixed(2),
	})
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return Appointment{}, apperr.NotFound("appointment %d not found", id)
	}
	return a, err
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, apperr.Validation("status: %s", errInvalidStatus)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, apperr.Validation("from must not be after to")
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (Appointment, error) {
	errs := validation.Errors{}
	if p.AnimalID.Set {
		if p.AnimalID.Null {
			errs["animal_id"] = errNotNull
		} else {
			errs["animal_id"] = validation.Validate(p.AnimalID.Value, validation.Required, validation.Min(int64(1)))
		}
	}
	if p.EmployeeID.HasValue() {
		errs["employee_id"] = validation.Validate(p.EmployeeID.Value, validation.Min(int64(1)))
	}
	if p.ScheduledAt.Set {
		if p.ScheduledAt.Null {
			errs["scheduled_at"] = errNotNull
		} else {
			errs["scheduled_at"] = validation.Validate(p.ScheduledAt.Value, validation.Required)
		}
	}
	if p.Status.Set {
		if p.Status.Null {
			errs["status"] = errNotNull
		} else {
			errs["status"] = validation.Validate(p.Status.Value, statusRule)
		}
	}
	if p.ReplacesServices() {
		errs["service_ids"] = validation.Validate(p.ServiceIDs.Value, serviceIDsRule)
	}
	if err := errs.Filter(); err != nil {
		return Appointment{}, apperr.Invalid(err)
	}

	if p.IsEmpty() {
		return s.GetByID(ctx, id)
	}

	var animalID, employeeID *int64
	if p.AnimalID.HasValue() {
		animalID = &p.AnimalID.Value
	}
	if p.EmployeeID.HasValue() {
		employeeID = &p.EmployeeID.Value
	}
	if err := s.ensureRefs(ctx, animalID, employeeID); err != nil {
		return Appointment{}, err
	}
	if p.ReplacesServices() {
		p.ServiceIDs.Value = UniqueIDs(p.ServiceIDs.Value)
	}

	a, err := s.repo.Update(ctx, id, p)
	if errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrValidation) {
		return Appointment{}, apperr.NotFound("appointment %d not found", id)
	}
	if err != nil {
		return Appointment{}, err
	}

	fields := logger.Fields{"appointment_id": id}
	if p.Status.Set {
		fields["status"] = string(a.Status)
	}
	if p.ReplacesServices() {
		fields["services"] = len(a.Lines)
		fields["total"] = a.Total.StringFixed(2)
	}
	logger.FromContext(ctx, s.log).Info("appointment updated", fields)
	return a, nil
}

// Delete borra la reserva y sus líneas en la misma transacción.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("appointment %d not found", id)
	}
	logger.FromContext(ctx, s.log).Info("appointment deleted", logger.Fields{"appointment_id": id})
	return nil
}

func (s *Service) ensureRefs(ctx context.Context, animalID, employeeID *int64) error {
	if animalID != nil {
		ok, err := s.animals.Exists(ctx, *animalID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("animal %d not found", *animalID)
		}
	}
	if employeeID != nil {
		ok, err := s.employees.Exists(ctx, *employeeID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("employee %d not found", *employeeID)
		}
	}
	return nil
}
