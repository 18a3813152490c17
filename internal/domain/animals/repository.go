package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) (Animal, error)
	GetByID(ctx context.Context, id int64) (Animal, error)
	List(ctx context.Context, f ListFilter) ([]Animal, error)
	Update(ctx context.Context, id int64, p Patch) (Animal, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
