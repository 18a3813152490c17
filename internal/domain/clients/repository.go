package clients

import "context"

type Repository interface {
	Create(ctx context.Context, c Client) (Client, error)
	GetByID(ctx context.Context, id int64) (Client, error)
	FindByEmail(ctx context.Context, email string) (Client, error)
	List(ctx context.Context, offset, limit int) ([]Client, error)
	Update(ctx context.Context, id int64, p Patch) (Client, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
