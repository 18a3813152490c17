package clients

import (
	"time"

	"petshop-api/internal/platform/patch"
)

// Client es el dueño de uno o más animales.
type Client struct {
	ID           int64
	Name         string
	Phone        string
	Email        string
	Address      *string
	RegisteredAt time.Time
}

type Patch struct {
	Name    patch.Field[string]
	Phone   patch.Field[string]
	Email   patch.Field[string]
	Address patch.Field[string] // nullable
}

func (p Patch) IsEmpty() bool {
	return !p.Name.Set && !p.Phone.Set && !p.Email.Set && !p.Address.Set
}
