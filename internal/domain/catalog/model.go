package catalog

import (
	"petshop-api/internal/platform/patch"

	"github.com/shopspring/decimal"
)

// Item es un servicio del catálogo (baño, corte, vacuna...).
// Price es el precio vigente; las reservas guardan su propia copia al momento de reservar.
type Item struct {
	ID              int64
	Name            string
	Description     *string
	Price           decimal.Decimal
	DurationMinutes int
}

type Patch struct {
	Name            patch.Field[string]
	Description     patch.Field[string] // nullable
	Price           patch.Field[decimal.Decimal]
	DurationMinutes patch.Field[int]
}

func (p Patch) IsEmpty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Price.Set && !p.DurationMinutes.Set
}
