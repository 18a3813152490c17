package memory

import (
	"context"
	"sort"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/appointments"

	"github.com/shopspring/decimal"
)

type appointmentsRepo struct {
	s *Store
}

func NewAppointmentsRepo(s *Store) appointments.Repository {
	return &appointmentsRepo{s: s}
}

// Todas las validaciones corren antes de mutar: con el lock tomado eso equivale a una tx.
func (r *appointmentsRepo) Create(ctx context.Context, d appointments.Draft) (appointments.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prices, err := r.resolve(d.ServiceIDs)
	if err != nil {
		return appointments.Appointment{}, err
	}
	if err := r.checkRefs(d.AnimalID, d.EmployeeID); err != nil {
		return appointments.Appointment{}, err
	}
	if !d.Status.Valid() {
		return appointments.Appointment{}, integrity("appointments_status_check", "invalid appointment status")
	}

	row := appointmentRow{
		ID:          r.s.nextID("appointments"),
		AnimalID:    d.AnimalID,
		EmployeeID:  clonePtr(d.EmployeeID),
		ScheduledAt: d.ScheduledAt,
		CreatedAt:   r.s.now().UTC(),
		Status:      d.Status,
		Notes:       clonePtr(d.Notes),
	}
	r.s.appointments[row.ID] = row
	r.attach(row.ID, d.ServiceIDs, prices)

	return r.hydrate(row), nil
}

func (r *appointmentsRepo) GetByID(ctx context.Context, id int64) (appointments.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.appointments[id]
	if !ok {
		return appointments.Appointment{}, apperr.ErrNotFound
	}
	return r.hydrate(row), nil
}

func (r *appointmentsRepo) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]appointmentRow, 0)
	for _, row := range r.s.appointments {
		if matches(row, f) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].ScheduledAt.Equal(rows[j].ScheduledAt) {
			return rows[i].ScheduledAt.After(rows[j].ScheduledAt)
		}
		return rows[i].ID > rows[j].ID
	})

	rows = page(rows, f.Offset, f.Limit)
	out := make([]appointments.Appointment, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.hydrate(row))
	}
	return out, nil
}

func matches(row appointmentRow, f appointments.ListFilter) bool {
	if f.AnimalID != nil && row.AnimalID != *f.AnimalID {
		return false
	}
	if f.EmployeeID != nil && (row.EmployeeID == nil || *row.EmployeeID != *f.EmployeeID) {
		return false
	}
	if f.From != nil && row.ScheduledAt.Before(*f.From) {
		return false
	}
	if f.To != nil && row.ScheduledAt.After(*f.To) {
		return false
	}
	if f.Status != nil && row.Status != *f.Status {
		return false
	}
	return true
}

func (r *appointmentsRepo) Update(ctx context.Context, id int64, p appointments.Patch) (appointments.Appointment, error) {
	if p.ReplacesServices() && len(p.ServiceIDs.Value) == 0 {
		return appointments.Appointment{}, apperr.Validation("an appointment must have at least one service")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.appointments[id]
	if !ok {
		return appointments.Appointment{}, apperr.ErrNotFound
	}
	if p.IsEmpty() {
		return r.hydrate(row), nil
	}

	if p.AnimalID.HasValue() {
		row.AnimalID = p.AnimalID.Value
	}
	if p.EmployeeID.Set {
		row.EmployeeID = p.EmployeeID.Ptr()
	}
	if p.ScheduledAt.HasValue() {
		row.ScheduledAt = p.ScheduledAt.Value
	}
	if p.Status.HasValue() {
		row.Status = p.Status.Value
	}
	if p.Notes.Set {
		row.Notes = p.Notes.Ptr()
	}
	if err := r.checkRefs(row.AnimalID, row.EmployeeID); err != nil {
		return appointments.Appointment{}, err
	}
	if !row.Status.Valid() {
		return appointments.Appointment{}, integrity("appointments_status_check", "invalid appointment status")
	}

	var prices map[int64]decimal.Decimal
	if p.ReplacesServices() {
		var err error
		if prices, err = r.resolve(p.ServiceIDs.Value); err != nil {
			return appointments.Appointment{}, err
		}
	}

	r.s.appointments[id] = row
	if p.ReplacesServices() {
		delete(r.s.lines, id)
		r.attach(id, p.ServiceIDs.Value, prices)
	}
	return r.hydrate(row), nil
}

func (r *appointmentsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appointments[id]; !ok {
		return false, nil
	}
	r.s.deleteAppointment(id)
	return true, nil
}

// resolve es el PriceResolver en memoria: reporta todos los ids faltantes.
func (r *appointmentsRepo) resolve(ids []int64) (map[int64]decimal.Decimal, error) {
	ids = appointments.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil, apperr.Validation("at least one service id is required")
	}

	prices := make(map[int64]decimal.Decimal, len(ids))
	var missing []int64
	for _, id := range ids {
		it, ok := r.s.services[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		prices[id] = it.Price
	}
	if len(missing) > 0 {
		return nil, apperr.NewMissingServices(missing)
	}
	return prices, nil
}

// attach es el linker: una línea por servicio con el precio congelado.
func (r *appointmentsRepo) attach(appointmentID int64, ids []int64, prices map[int64]decimal.Decimal) {
	for _, id := range appointments.UniqueIDs(ids) {
		r.s.lines[appointmentID] = append(r.s.lines[appointmentID], lineRow{ServiceID: id, Price: prices[id]})
	}
}

func (r *appointmentsRepo) checkRefs(animalID int64, employeeID *int64) error {
	if _, ok := r.s.animals[animalID]; !ok {
		return integrity("appointments_animal_id_fkey", "referenced animal does not exist")
	}
	if employeeID != nil {
		if _, ok := r.s.employees[*employeeID]; !ok {
			return integrity("appointments_employee_id_fkey", "referenced employee does not exist")
		}
	}
	return nil
}

// hydrate arma la vista de lectura: nombres por "join", líneas ordenadas por servicio y total.
func (r *appointmentsRepo) hydrate(row appointmentRow) appointments.Appointment {
	a := appointments.Appointment{
		ID:          row.ID,
		AnimalID:    row.AnimalID,
		EmployeeID:  clonePtr(row.EmployeeID),
		ScheduledAt: row.ScheduledAt,
		CreatedAt:   row.CreatedAt,
		Status:      row.Status,
		Notes:       clonePtr(row.Notes),
	}

	if an, ok := r.s.animals[row.AnimalID]; ok {
		a.AnimalName = an.Name
		if c, ok := r.s.clients[an.ClientID]; ok {
			a.ClientName = c.Name
		}
	}
	if row.EmployeeID != nil {
		if e, ok := r.s.employees[*row.EmployeeID]; ok {
			a.EmployeeName = e.Name
		}
	}

	ls := append([]lineRow(nil), r.s.lines[row.ID]...)
	sort.Slice(ls, func(i, j int) bool { return ls[i].ServiceID < ls[j].ServiceID })
	for _, l := range ls {
		a.Lines = append(a.Lines, appointments.Line{
			ServiceID:   l.ServiceID,
			ServiceName: r.s.services[l.ServiceID].Name,
			Price:       l.Price,
			Notes:       clonePtr(l.Notes),
		})
	}
	a.Total = appointments.SumLines(a.Lines)
	return a
}
