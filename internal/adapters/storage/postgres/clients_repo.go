package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/clients"
)

var clientColumns = []string{"name", "phone", "email", "address"}

const clientSelect = `SELECT id, name, phone, email, address, registered_at FROM clients`

type ClientsRepo struct {
	db *sql.DB
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

func (r *ClientsRepo) Create(ctx context.Context, c clients.Client) (clients.Client, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, phone, email, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, registered_at
	`,
		c.Name,
		c.Phone,
		c.Email,
		c.Address,
	).Scan(&c.ID, &c.RegisteredAt)
	if err != nil {
		return clients.Client{}, mapError(err)
	}
	return c, nil
}

func (r *ClientsRepo) GetByID(ctx context.Context, id int64) (clients.Client, error) {
	return scanClient(r.db.QueryRowContext(ctx, clientSelect+` WHERE id = $1`, id))
}

func (r *ClientsRepo) FindByEmail(ctx context.Context, email string) (clients.Client, error) {
	return scanClient(r.db.QueryRowContext(ctx, clientSelect+` WHERE email = $1`, email))
}

func (r *ClientsRepo) List(ctx context.Context, offset, limit int) ([]clients.Client, error) {
	rows, err := r.db.QueryContext(ctx, clientSelect+` ORDER BY id LIMIT $1 OFFSET $2`, limitOrDefault(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := make([]clients.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("list clients: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClientsRepo) Update(ctx context.Context, id int64, p clients.Patch) (clients.Client, error) {
	u := newUpdate("clients", clientColumns)
	setField(u, "name", p.Name)
	setField(u, "phone", p.Phone)
	setField(u, "email", p.Email)
	setField(u, "address", p.Address)
	if u.empty() {
		return r.GetByID(ctx, id)
	}

	query, qargs := u.build("id", id)
	c, err := scanClient(r.db.QueryRowContext(ctx, query+` RETURNING id, name, phone, email, address, registered_at`, qargs...))
	if err != nil {
		return clients.Client{}, mapError(err)
	}
	return c, nil
}

// Delete: animals y appointments caen por ON DELETE CASCADE.
func (r *ClientsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := affected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanClient(row rowScanner) (clients.Client, error) {
	var c clients.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.RegisteredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return clients.Client{}, apperr.ErrNotFound
		}
		return clients.Client{}, err
	}
	return c, nil
}
