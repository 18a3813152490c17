package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, it Item) (Item, error)
	GetByID(ctx context.Context, id int64) (Item, error)
	FindByName(ctx context.Context, name string) (Item, error)
	List(ctx context.Context, offset, limit int) ([]Item, error)
	Update(ctx context.Context, id int64, p Patch) (Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
