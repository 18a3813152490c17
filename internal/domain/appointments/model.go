package appointments

import (
	"time"

	"petshop-api/internal/platform/patch"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
	StatusNoShow    Status = "NoShow"
)

// Sin grafo de transiciones: cualquier estado puede pasar a cualquier otro.
var statuses = []Status{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Line es un servicio de la reserva con el precio congelado al momento de agregarlo.
type Line struct {
	ServiceID   int64
	ServiceName string
	Price       decimal.Decimal
	Notes       *string
}

type Appointment struct {
	ID          int64
	AnimalID    int64
	EmployeeID  *int64
	ScheduledAt time.Time
	CreatedAt   time.Time
	Status      Status
	Notes       *string

	// Calculados al leer (joins), nunca persistidos.
	AnimalName   string
	ClientName   string
	EmployeeName string
	Total        decimal.Decimal

	Lines []Line
}

// SumLines suma los precios congelados; decimal exacto, nunca float.
func SumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}
	return total
}

// Draft es lo necesario para crear una reserva.
type Draft struct {
	AnimalID    int64
	EmployeeID  *int64
	ScheduledAt time.Time
	Status      Status
	Notes       *string
	ServiceIDs  []int64
}

// Patch: solo se escriben los campos presentes.
// ServiceIDs presente reemplaza el set completo de líneas.
type Patch struct {
	AnimalID    patch.Field[int64]
	EmployeeID  patch.Field[int64] // nullable
	ScheduledAt patch.Field[time.Time]
	Status      patch.Field[Status]
	Notes       patch.Field[string] // nullable
	ServiceIDs  patch.Field[[]int64]
}

func (p Patch) HeaderEmpty() bool {
	return !p.AnimalID.Set && !p.EmployeeID.Set && !p.ScheduledAt.Set && !p.Status.Set && !p.Notes.Set
}

// ReplacesServices: null en service_ids cuenta como ausente.
func (p Patch) ReplacesServices() bool {
	return p.ServiceIDs.HasValue()
}

func (p Patch) IsEmpty() bool {
	return p.HeaderEmpty() && !p.ReplacesServices()
}

type ListFilter struct {
	AnimalID   *int64
	EmployeeID *int64
	From       *time.Time // inclusive
	To         *time.Time // inclusive
	Status     *Status

	Offset int
	Limit  int
}

// UniqueIDs colapsa duplicados conservando el orden de primera aparición.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
