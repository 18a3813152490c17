package employees

import "context"

type Repository interface {
	Create(ctx context.Context, e Employee) (Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	FindByEmail(ctx context.Context, email string) (Employee, error)
	List(ctx context.Context, f ListFilter) ([]Employee, error)
	Update(ctx context.Context, id int64, p Patch) (Employee, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
