package animals

import (
	"time"

	"petshop-api/internal/platform/patch"
)

// Animal pertenece a exactamente un cliente.
type Animal struct {
	ID       int64
	ClientID int64

	Name    string
	Species string
	Breed   *string

	BirthDate *time.Time
	Notes     *string
}

// Patch: el dueño (ClientID) no se puede cambiar.
type Patch struct {
	Name      patch.Field[string]
	Species   patch.Field[string]
	Breed     patch.Field[string]    // nullable
	BirthDate patch.Field[time.Time] // nullable
	Notes     patch.Field[string]    // nullable
}

func (p Patch) IsEmpty() bool {
	return !p.Name.Set && !p.Species.Set && !p.Breed.Set && !p.BirthDate.Set && !p.Notes.Set
}

type ListFilter struct {
	ClientID *int64
	Offset   int
	Limit    int
}
