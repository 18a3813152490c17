package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/employees"
)

var employeeColumns = []string{"name", "role", "phone", "email", "hired_on", "active"}

const employeeFields = `id, name, role, phone, email, hired_on, active`

type EmployeesRepo struct {
	db *sql.DB
}

func NewEmployeesRepo(db *sql.DB) *EmployeesRepo {
	return &EmployeesRepo{db: db}
}

func (r *EmployeesRepo) Create(ctx context.Context, e employees.Employee) (employees.Employee, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO employees (name, role, phone, email, hired_on, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		e.Name,
		e.Role,
		e.Phone,
		e.Email,
		e.HiredOn,
		e.Active,
	).Scan(&e.ID)
	if err != nil {
		return employees.Employee{}, mapError(err)
	}
	return e, nil
}

func (r *EmployeesRepo) GetByID(ctx context.Context, id int64) (employees.Employee, error) {
	return scanEmployee(r.db.QueryRowContext(ctx, `SELECT `+employeeFields+` FROM employees WHERE id = $1`, id))
}

func (r *EmployeesRepo) FindByEmail(ctx context.Context, email string) (employees.Employee, error) {
	return scanEmployee(r.db.QueryRowContext(ctx, `SELECT `+employeeFields+` FROM employees WHERE email = $1`, email))
}

func (r *EmployeesRepo) List(ctx context.Context, f employees.ListFilter) ([]employees.Employee, error) {
	var a args
	w := newWhere(&a)
	if f.ActiveOnly {
		w.and("active = %s", true)
	}
	query := `SELECT ` + employeeFields + ` FROM employees` + w.String() +
		` ORDER BY id LIMIT ` + a.add(limitOrDefault(f.Limit)) + ` OFFSET ` + a.add(max(f.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := make([]employees.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EmployeesRepo) Update(ctx context.Context, id int64, p employees.Patch) (employees.Employee, error) {
	u := newUpdate("employees", employeeColumns)
	setField(u, "name", p.Name)
	setField(u, "role", p.Role)
	setField(u, "phone", p.Phone)
	setField(u, "email", p.Email)
	setField(u, "hired_on", p.HiredOn)
	setField(u, "active", p.Active)
	if u.empty() {
		return r.GetByID(ctx, id)
	}

	query, qargs := u.build("id", id)
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query+` RETURNING `+employeeFields, qargs...))
	if err != nil {
		return employees.Employee{}, mapError(err)
	}
	return e, nil
}

// Delete: appointments.employee_id queda NULL (ON DELETE SET NULL).
func (r *EmployeesRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return false, mapError(err)
	}
	n, err := affected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanEmployee(row rowScanner) (employees.Employee, error) {
	var e employees.Employee
	if err := row.Scan(&e.ID, &e.Name, &e.Role, &e.Phone, &e.Email, &e.HiredOn, &e.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employees.Employee{}, apperr.ErrNotFound
		}
		return employees.Employee{}, err
	}
	return e, nil
}
