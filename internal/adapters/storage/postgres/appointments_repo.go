package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/appointments"
)

// Columnas que un PATCH puede tocar; id y created_at nunca.
var appointmentColumns = []string{"animal_id", "employee_id", "scheduled_at", "status", "notes"}

const appointmentSelect = `
	SELECT
		a.id, a.animal_id, a.employee_id,
		a.scheduled_at, a.created_at,
		a.status, a.notes,
		an.name, c.name, COALESCE(e.name, ''),
		COALESCE((
			SELECT SUM(l.price_snapshot)
			FROM appointment_services l
			WHERE l.appointment_id = a.id
		), 0)
	FROM appointments a
	JOIN animals an ON an.id = a.animal_id
	JOIN clients c ON c.id = an.client_id
	LEFT JOIN employees e ON e.id = a.employee_id`

type AppointmentsRepo struct {
	db     *sql.DB
	prices PriceResolver
	linker ServiceLinker
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

func (r *AppointmentsRepo) Create(ctx context.Context, d appointments.Draft) (appointments.Appointment, error) {
	var out appointments.Appointment
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		prices, err := r.prices.Resolve(ctx, tx, d.ServiceIDs)
		if err != nil {
			return err
		}

		var id int64
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO appointments (animal_id, employee_id, scheduled_at, status, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`,
			d.AnimalID,
			d.EmployeeID,
			d.ScheduledAt,
			string(d.Status),
			d.Notes,
		).Scan(&id); err != nil {
			return mapError(err)
		}

		if err := r.linker.Attach(ctx, tx, id, snapshotLines(d.ServiceIDs, prices)); err != nil {
			return err
		}

		out, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return appointments.Appointment{}, err
	}
	return out, nil
}

// GetByID no abre transacción: dos lecturas seguidas sobre el pool.
func (r *AppointmentsRepo) GetByID(ctx context.Context, id int64) (appointments.Appointment, error) {
	return r.get(ctx, r.db, id)
}

func (r *AppointmentsRepo) get(ctx context.Context, q dbtx, id int64) (appointments.Appointment, error) {
	a, err := scanAppointment(q.QueryRowContext(ctx, appointmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Appointment{}, apperr.ErrNotFound
		}
		return appointments.Appointment{}, err
	}

	lines, err := loadLines(ctx, q, []int64{id})
	if err != nil {
		return appointments.Appointment{}, err
	}
	a.Lines = lines[id]
	return a, nil
}

func (r *AppointmentsRepo) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	var a args
	w := newWhere(&a)
	if f.AnimalID != nil {
		w.and("a.animal_id = %s", *f.AnimalID)
	}
	if f.EmployeeID != nil {
		w.and("a.employee_id = %s", *f.EmployeeID)
	}
	if f.From != nil {
		w.and("a.scheduled_at >= %s", *f.From)
	}
	if f.To != nil {
		w.and("a.scheduled_at <= %s", *f.To)
	}
	if f.Status != nil {
		w.and("a.status = %s", string(*f.Status))
	}

	query := appointmentSelect + w.String() +
		` ORDER BY a.scheduled_at DESC, a.id DESC` +
		` LIMIT ` + a.add(limitOrDefault(f.Limit)) + ` OFFSET ` + a.add(max(f.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		ap, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("list appointments: %w", err)
		}
		out = append(out, ap)
		ids = append(ids, ap.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	// una sola consulta de líneas para toda la página
	lines, err := loadLines(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = lines[out[i].ID]
	}
	return out, nil
}

func (r *AppointmentsRepo) Update(ctx context.Context, id int64, p appointments.Patch) (appointments.Appointment, error) {
	if p.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	if p.ReplacesServices() && len(p.ServiceIDs.Value) == 0 {
		return appointments.Appointment{}, apperr.Validation("an appointment must have at least one service")
	}

	var out appointments.Appointment
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.updateHeader(ctx, tx, id, p); err != nil {
			return err
		}

		if p.ReplacesServices() {
			prices, err := r.prices.Resolve(ctx, tx, p.ServiceIDs.Value)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM appointment_services WHERE appointment_id = $1`, id); err != nil {
				return fmt.Errorf("replace services: %w", err)
			}
			if err := r.linker.Attach(ctx, tx, id, snapshotLines(p.ServiceIDs.Value, prices)); err != nil {
				return err
			}
		}

		var err error
		out, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return appointments.Appointment{}, err
	}
	return out, nil
}

// updateHeader escribe solo los campos presentes. Si el patch trae solo servicios
// igual se bloquea la fila de la cabecera para serializar reemplazos concurrentes.
func (r *AppointmentsRepo) updateHeader(ctx context.Context, tx *sql.Tx, id int64, p appointments.Patch) error {
	if p.HeaderEmpty() {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM appointments WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return err
	}

	u := newUpdate("appointments", appointmentColumns)
	setField(u, "animal_id", p.AnimalID)
	setField(u, "employee_id", p.EmployeeID)
	setField(u, "scheduled_at", p.ScheduledAt)
	setFieldAs(u, "status", p.Status, func(s appointments.Status) any { return string(s) })
	setField(u, "notes", p.Notes)

	query, qargs := u.build("id", id)
	res, err := tx.ExecContext(ctx, query, qargs...)
	if err != nil {
		return mapError(err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		// la FK ya cascadea; borrar explícito deja la regla en el repo también
		if _, err := tx.ExecContext(ctx, `DELETE FROM appointment_services WHERE appointment_id = $1`, id); err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var (
		a        appointments.Appointment
		employee sql.NullInt64
		status   string
	)
	if err := row.Scan(
		&a.ID,
		&a.AnimalID,
		&employee,
		&a.ScheduledAt,
		&a.CreatedAt,
		&status,
		&a.Notes,
		&a.AnimalName,
		&a.ClientName,
		&a.EmployeeName,
		&a.Total,
	); err != nil {
		return appointments.Appointment{}, err
	}

	if employee.Valid {
		v := employee.Int64
		a.EmployeeID = &v
	}
	a.Status = appointments.Status(status)
	return a, nil
}

// loadLines trae las líneas de varias reservas, agrupadas por reserva.
func loadLines(ctx context.Context, q dbtx, ids []int64) (map[int64][]appointments.Line, error) {
	var a args
	rows, err := q.QueryContext(ctx, `
		SELECT l.appointment_id, l.service_id, s.name, l.price_snapshot, l.notes
		FROM appointment_services l
		JOIN services s ON s.id = l.service_id
		WHERE l.appointment_id IN (`+a.list(ids)+`)
		ORDER BY l.appointment_id, l.service_id
	`, a...)
	if err != nil {
		return nil, fmt.Errorf("load lines: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]appointments.Line, len(ids))
	for rows.Next() {
		var (
			appointmentID int64
			l             appointments.Line
		)
		if err := rows.Scan(&appointmentID, &l.ServiceID, &l.ServiceName, &l.Price, &l.Notes); err != nil {
			return nil, fmt.Errorf("load lines: %w", err)
		}
		out[appointmentID] = append(out[appointmentID], l)
	}
	return out, rows.Err()
}
