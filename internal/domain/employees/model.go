package employees

import (
	"time"

	"petshop-api/internal/platform/patch"
)

type Employee struct {
	ID      int64
	Name    string
	Role    string
	Phone   *string
	Email   *string
	HiredOn time.Time
	Active  bool
}

type Patch struct {
	Name    patch.Field[string]
	Role    patch.Field[string]
	Phone   patch.Field[string] // nullable
	Email   patch.Field[string] // nullable
	HiredOn patch.Field[time.Time]
	Active  patch.Field[bool]
}

func (p Patch) IsEmpty() bool {
	return !p.Name.Set && !p.Role.Set && !p.Phone.Set && !p.Email.Set && !p.HiredOn.Set && !p.Active.Set
}

type ListFilter struct {
	ActiveOnly bool
	Offset     int
	Limit      int
}
