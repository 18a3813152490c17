package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/animals"
)

// client_id no está: el dueño no se cambia por PATCH.
var animalColumns = []string{"name", "species", "breed", "birth_date", "notes"}

const animalFields = `id, client_id, name, species, breed, birth_date, notes`

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO animals (client_id, name, species, breed, birth_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		a.ClientID,
		a.Name,
		a.Species,
		a.Breed,
		toNullDate(a.BirthDate),
		a.Notes,
	).Scan(&a.ID)
	if err != nil {
		return animals.Animal{}, mapError(err)
	}
	return a, nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id int64) (animals.Animal, error) {
	return scanAnimal(r.db.QueryRowContext(ctx, `SELECT `+animalFields+` FROM animals WHERE id = $1`, id))
}

func (r *AnimalsRepo) List(ctx context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	var a args
	w := newWhere(&a)
	if f.ClientID != nil {
		w.and("client_id = %s", *f.ClientID)
	}
	query := `SELECT ` + animalFields + ` FROM animals` + w.String() +
		` ORDER BY id LIMIT ` + a.add(limitOrDefault(f.Limit)) + ` OFFSET ` + a.add(max(f.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		an, err := scanAnimal(rows)
		if err != nil {
			return nil, fmt.Errorf("list animals: %w", err)
		}
		out = append(out, an)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) Update(ctx context.Context, id int64, p animals.Patch) (animals.Animal, error) {
	u := newUpdate("animals", animalColumns)
	setField(u, "name", p.Name)
	setField(u, "species", p.Species)
	setField(u, "breed", p.Breed)
	setFieldAs(u, "birth_date", p.BirthDate, func(t time.Time) any { return toNullDate(&t) })
	setField(u, "notes", p.Notes)
	if u.empty() {
		return r.GetByID(ctx, id)
	}

	query, qargs := u.build("id", id)
	a, err := scanAnimal(r.db.QueryRowContext(ctx, query+` RETURNING `+animalFields, qargs...))
	if err != nil {
		return animals.Animal{}, mapError(err)
	}
	return a, nil
}

func (r *AnimalsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := affected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var (
		a  animals.Animal
		bd sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.ClientID, &a.Name, &a.Species, &a.Breed, &bd, &a.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.Animal{}, apperr.ErrNotFound
		}
		return animals.Animal{}, err
	}
	if bd.Valid {
		// birth_date es DATE; pgx lo trae como medianoche UTC
		t := bd.Time
		a.BirthDate = &t
	}
	return a, nil
}

// birth_date y hired_on son DATE, los pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
