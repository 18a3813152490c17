package memory

import (
	"context"
	"sort"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/employees"
)

type employeesRepo struct {
	s *Store
}

func NewEmployeesRepo(s *Store) employees.Repository {
	return &employeesRepo{s: s}
}

func (r *employeesRepo) Create(ctx context.Context, e employees.Employee) (employees.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.Email != nil && r.emailTaken(*e.Email, 0) {
		return employees.Employee{}, integrity("employees_email_key", "email already registered")
	}
	e.ID = r.s.nextID("employees")
	r.s.employees[e.ID] = e
	return e, nil
}

func (r *employeesRepo) GetByID(ctx context.Context, id int64) (employees.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok {
		return employees.Employee{}, apperr.ErrNotFound
	}
	return e, nil
}

func (r *employeesRepo) FindByEmail(ctx context.Context, email string) (employees.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, e := range r.s.employees {
		if e.Email != nil && *e.Email == email {
			return e, nil
		}
	}
	return employees.Employee{}, apperr.ErrNotFound
}

func (r *employeesRepo) List(ctx context.Context, f employees.ListFilter) ([]employees.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]employees.Employee, 0)
	for _, e := range r.s.employees {
		if f.ActiveOnly && !e.Active {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), nil
}

func (r *employeesRepo) Update(ctx context.Context, id int64, p employees.Patch) (employees.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.employees[id]
	if !ok {
		return employees.Employee{}, apperr.ErrNotFound
	}
	if p.Name.HasValue() {
		e.Name = p.Name.Value
	}
	if p.Role.HasValue() {
		e.Role = p.Role.Value
	}
	if p.Phone.Set {
		e.Phone = p.Phone.Ptr()
	}
	if p.Email.Set {
		if p.Email.HasValue() && r.emailTaken(p.Email.Value, id) {
			return employees.Employee{}, integrity("employees_email_key", "email already registered")
		}
		e.Email = p.Email.Ptr()
	}
	if p.HiredOn.HasValue() {
		e.HiredOn = p.HiredOn.Value
	}
	if p.Active.HasValue() {
		e.Active = p.Active.Value
	}
	r.s.employees[id] = e
	return e, nil
}

// Delete deja sin asignar las reservas del empleado (ON DELETE SET NULL).
func (r *employeesRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.employees[id]; !ok {
		return false, nil
	}
	for apID, ap := range r.s.appointments {
		if ap.EmployeeID != nil && *ap.EmployeeID == id {
			ap.EmployeeID = nil
			r.s.appointments[apID] = ap
		}
	}
	delete(r.s.employees, id)
	return true, nil
}

func (r *employeesRepo) emailTaken(email string, selfID int64) bool {
	for _, e := range r.s.employees {
		if e.Email != nil && *e.Email == email && e.ID != selfID {
			return true
		}
	}
	return false
}
