package appointments

import "context"

// Repository es transaccional en cada escritura: o queda la reserva con todas
// sus líneas o no queda nada.
type Repository interface {
	Create(ctx context.Context, d Draft) (Appointment, error)
	// GetByID devuelve apperr.ErrNotFound si no existe.
	GetByID(ctx context.Context, id int64) (Appointment, error)
	List(ctx context.Context, f ListFilter) ([]Appointment, error)
	Update(ctx context.Context, id int64, p Patch) (Appointment, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
