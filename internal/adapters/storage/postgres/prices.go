package postgres

import (
	"context"
	"fmt"
	"strings"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/appointments"

	"github.com/shopspring/decimal"
)

// PriceResolver trae el precio vigente de cada servicio en una sola consulta.
type PriceResolver struct{}

// Resolve falla con *apperr.MissingServicesError listando todos los ids inexistentes.
func (PriceResolver) Resolve(ctx context.Context, q dbtx, ids []int64) (map[int64]decimal.Decimal, error) {
	ids = appointments.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil, apperr.Validation("at least one service id is required")
	}

	var a args
	rows, err := q.QueryContext(ctx, `SELECT id, price FROM services WHERE id IN (`+a.list(ids)+`)`, a...)
	if err != nil {
		return nil, fmt.Errorf("resolve prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[int64]decimal.Decimal, len(ids))
	for rows.Next() {
		var (
			id    int64
			price decimal.Decimal
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("resolve prices: %w", err)
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve prices: %w", err)
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.NewMissingServices(missing)
	}
	return prices, nil
}

// ServiceLinker escribe las líneas de una reserva dentro de la tx del caller.
// No es idempotente: llamarlo dos veces duplica (y viola la PK).
type ServiceLinker struct{}

func (ServiceLinker) Attach(ctx context.Context, q dbtx, appointmentID int64, lines []appointments.Line) error {
	if len(lines) == 0 {
		return nil
	}

	var a args
	values := make([]string, 0, len(lines))
	for _, l := range lines {
		values = append(values, fmt.Sprintf("(%s, %s, %s, %s)",
			a.add(appointmentID), a.add(l.ServiceID), a.add(l.Price), a.add(l.Notes)))
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO appointment_services (appointment_id, service_id, price_snapshot, notes)
		VALUES `+strings.Join(values, ", "), a...)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// snapshotLines arma las líneas en el orden pedido con el precio resuelto.
func snapshotLines(ids []int64, prices map[int64]decimal.Decimal) []appointments.Line {
	ids = appointments.UniqueIDs(ids)
	lines := make([]appointments.Line, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, appointments.Line{ServiceID: id, Price: prices[id]})
	}
	return lines
}
