package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/catalog"
)

var serviceColumns = []string{"name", "description", "price", "duration_minutes"}

const serviceFields = `id, name, description, price, duration_minutes`

// CatalogRepo persiste el catálogo en la tabla services.
type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Create(ctx context.Context, it catalog.Item) (catalog.Item, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO services (name, description, price, duration_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`,
		it.Name,
		it.Description,
		it.Price,
		it.DurationMinutes,
	).Scan(&it.ID)
	if err != nil {
		return catalog.Item{}, mapError(err)
	}
	return it, nil
}

func (r *CatalogRepo) GetByID(ctx context.Context, id int64) (catalog.Item, error) {
	return scanItem(r.db.QueryRowContext(ctx, `SELECT `+serviceFields+` FROM services WHERE id = $1`, id))
}

func (r *CatalogRepo) FindByName(ctx context.Context, name string) (catalog.Item, error) {
	return scanItem(r.db.QueryRowContext(ctx, `SELECT `+serviceFields+` FROM services WHERE name = $1`, name))
}

func (r *CatalogRepo) List(ctx context.Context, offset, limit int) ([]catalog.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+serviceFields+` FROM services ORDER BY id LIMIT $1 OFFSET $2`,
		limitOrDefault(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list services: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update cambia solo el precio vigente; las líneas ya reservadas guardan su copia.
func (r *CatalogRepo) Update(ctx context.Context, id int64, p catalog.Patch) (catalog.Item, error) {
	u := newUpdate("services", serviceColumns)
	setField(u, "name", p.Name)
	setField(u, "description", p.Description)
	setField(u, "price", p.Price)
	setField(u, "duration_minutes", p.DurationMinutes)
	if u.empty() {
		return r.GetByID(ctx, id)
	}

	query, qargs := u.build("id", id)
	it, err := scanItem(r.db.QueryRowContext(ctx, query+` RETURNING `+serviceFields, qargs...))
	if err != nil {
		return catalog.Item{}, mapError(err)
	}
	return it, nil
}

// Delete falla con IntegrityError si alguna reserva usa el servicio (ON DELETE RESTRICT).
func (r *CatalogRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, &apperr.IntegrityError{
				Code:       codeForeignKey,
				Constraint: "appointment_services_service_id_fkey",
				Message:    "service is referenced by existing appointments",
				Err:        err,
			}
		}
		return false, mapError(err)
	}
	n, err := affected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanItem(row rowScanner) (catalog.Item, error) {
	var it catalog.Item
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.DurationMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Item{}, apperr.ErrNotFound
		}
		return catalog.Item{}, err
	}
	return it, nil
}
