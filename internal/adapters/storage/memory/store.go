package memory

import (
	"sync"
	"time"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/animals"
	"petshop-api/internal/domain/appointments"
	"petshop-api/internal/domain/catalog"
	"petshop-api/internal/domain/clients"
	"petshop-api/internal/domain/employees"

	"github.com/shopspring/decimal"
)

// Store es la "base" en memoria (modo dev y tests). Un solo mutex cubre todas las
// tablas para poder emular FKs, cascadas y transacciones.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq map[string]int64

	clients      map[int64]clients.Client
	animals      map[int64]animals.Animal
	employees    map[int64]employees.Employee
	services     map[int64]catalog.Item
	appointments map[int64]appointmentRow
	lines        map[int64][]lineRow // por appointment id
}

type appointmentRow struct {
	ID          int64
	AnimalID    int64
	EmployeeID  *int64
	ScheduledAt time.Time
	CreatedAt   time.Time
	Status      appointments.Status
	Notes       *string
}

type lineRow struct {
	ServiceID int64
	Price     decimal.Decimal
	Notes     *string
}

func NewStore() *Store {
	return &Store{
		now:          time.Now,
		seq:          make(map[string]int64),
		clients:      make(map[int64]clients.Client),
		animals:      make(map[int64]animals.Animal),
		employees:    make(map[int64]employees.Employee),
		services:     make(map[int64]catalog.Item),
		appointments: make(map[int64]appointmentRow),
		lines:        make(map[int64][]lineRow),
	}
}

// nextID emula BIGSERIAL: nunca reutiliza ids borrados.
func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func integrity(constraint, msg string) error {
	return &apperr.IntegrityError{Constraint: constraint, Message: msg}
}

// deleteAnimal borra el animal y en cascada sus reservas con sus líneas.
func (s *Store) deleteAnimal(id int64) {
	delete(s.animals, id)
	for apID, ap := range s.appointments {
		if ap.AnimalID == id {
			s.deleteAppointment(apID)
		}
	}
}

func (s *Store) deleteAppointment(id int64) {
	delete(s.lines, id)
	delete(s.appointments, id)
}

func (s *Store) serviceReferenced(serviceID int64) bool {
	for _, ls := range s.lines {
		for _, l := range ls {
			if l.ServiceID == serviceID {
				return true
			}
		}
	}
	return false
}

func page[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return make([]T, 0)
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
