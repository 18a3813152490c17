package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"petshop-api/internal/apperr"
	"petshop-api/internal/domain/appointments"
	"petshop-api/internal/platform/patch"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

// -------------------------
// Helpers
// -------------------------

var (
	headerColumns = []string{
		"id", "animal_id", "employee_id", "scheduled_at", "created_at", "status", "notes",
		"animal_name", "client_name", "employee_name", "total",
	}
	lineColumns = []string{"appointment_id", "service_id", "name", "price_snapshot", "notes"}

	scheduled = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	created   = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func headerRow(rows *sqlmock.Rows, id int64, status, total string) *sqlmock.Rows {
	return rows.AddRow(id, int64(3), nil, scheduled, created, status, nil, "Rex", "Ana", "", total)
}

func expectPrices(mock sqlmock.Sqlmock, ids []any, found map[int64]string) {
	rows := sqlmock.NewRows([]string{"id", "price"})
	for _, id := range ids {
		if p, ok := found[id.(int64)]; ok {
			rows.AddRow(id, p)
		}
	}
	mock.ExpectQuery(q("SELECT id, price FROM services WHERE id IN (")).
		WithArgs(toDriver(ids)...).
		WillReturnRows(rows)
}

func expectGet(mock sqlmock.Sqlmock, id int64, status, total string, lines [][]any) {
	mock.ExpectQuery(q("WHERE a.id = $1")).
		WithArgs(id).
		WillReturnRows(headerRow(sqlmock.NewRows(headerColumns), id, status, total))

	rows := sqlmock.NewRows(lineColumns)
	for _, l := range lines {
		rows.AddRow(toDriver(l)...)
	}
	mock.ExpectQuery(q("FROM appointment_services l")).
		WithArgs(id).
		WillReturnRows(rows)
}

func toDriver(vs []any) []driver.Value {
	out := make([]driver.Value, 0, len(vs))
	for _, v := range vs {
		out = append(out, v)
	}
	return out
}

// -------------------------
// Create
// -------------------------

func TestAppointmentsRepo_Create_CommitsHeaderAndLines(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	expectPrices(mock, []any{int64(1), int64(2)}, map[int64]string{1: "50.00", 2: "30.00"})
	mock.ExpectQuery(q("INSERT INTO appointments")).
		WithArgs(int64(3), nil, scheduled, "Scheduled", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec(q("INSERT INTO appointment_services (appointment_id, service_id, price_snapshot, notes)")).
		WithArgs(int64(10), int64(1), "50", nil, int64(10), int64(2), "30", nil).
		WillReturnResult(sqlmock.NewResult(0, 2))
	expectGet(mock, 10, "Scheduled", "80.00", [][]any{
		{int64(10), int64(1), "Bath", "50.00", nil},
		{int64(10), int64(2), "Nail trim", "30.00", nil},
	})
	mock.ExpectCommit()

	a, err := repo.Create(context.Background(), appointments.Draft{
		AnimalID:    3,
		ScheduledAt: scheduled,
		Status:      appointments.StatusScheduled,
		ServiceIDs:  []int64{1, 2, 1},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if a.ID != 10 || len(a.Lines) != 2 {
		t.Fatalf("unexpected appointment: %+v", a)
	}
	if a.Total.StringFixed(2) != "80.00" || !a.Total.Equal(appointments.SumLines(a.Lines)) {
		t.Fatalf("expected total 80.00 matching lines, got %s", a.Total)
	}
	if a.AnimalName != "Rex" || a.ClientName != "Ana" || a.EmployeeID != nil {
		t.Fatalf("unexpected display fields: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppointmentsRepo_Create_MissingServicesRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	expectPrices(mock, []any{int64(1), int64(7), int64(5)}, map[int64]string{1: "50.00"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), appointments.Draft{
		AnimalID:    3,
		ScheduledAt: scheduled,
		Status:      appointments.StatusScheduled,
		ServiceIDs:  []int64{1, 7, 5},
	})

	var missing *apperr.MissingServicesError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingServicesError, got %v", err)
	}
	if len(missing.IDs) != 2 || missing.IDs[0] != 5 || missing.IDs[1] != 7 {
		t.Fatalf("expected missing [5 7], got %v", missing.IDs)
	}
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("missing services must be a validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no insert must run: %v", err)
	}
}

func TestAppointmentsRepo_Create_UnknownAnimalIsIntegrityError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	expectPrices(mock, []any{int64(1)}, map[int64]string{1: "50.00"})
	mock.ExpectQuery(q("INSERT INTO appointments")).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "appointments_animal_id_fkey"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), appointments.Draft{
		AnimalID:    99,
		ScheduledAt: scheduled,
		Status:      appointments.StatusScheduled,
		ServiceIDs:  []int64{1},
	})

	var ie *apperr.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
	if ie.Message != "referenced animal does not exist" {
		t.Fatalf("unexpected message: %q", ie.Message)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// -------------------------
// Get / List
// -------------------------

func TestAppointmentsRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectQuery(q("WHERE a.id = $1")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(headerColumns))

	_, err := repo.GetByID(context.Background(), 404)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppointmentsRepo_GetByID_StorageErrorIsNotNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectQuery(q("WHERE a.id = $1")).WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), 1)
	if err == nil || errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestAppointmentsRepo_List_FiltersAndBatchesLines(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	animalID := int64(3)
	status := appointments.StatusConfirmed

	rows := sqlmock.NewRows(headerColumns)
	headerRow(rows, 12, "Confirmed", "60.00")
	headerRow(rows, 11, "Confirmed", "30.00")

	mock.ExpectQuery(q("WHERE a.animal_id = $1 AND a.status = $2 ORDER BY a.scheduled_at DESC, a.id DESC LIMIT $3 OFFSET $4")).
		WithArgs(animalID, "Confirmed", 100, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(q("WHERE l.appointment_id IN ($1, $2)")).
		WithArgs(int64(12), int64(11)).
		WillReturnRows(sqlmock.NewRows(lineColumns).
			AddRow(int64(11), int64(2), "Nail trim", "30.00", nil).
			AddRow(int64(12), int64(1), "Bath", "60.00", nil))

	out, err := repo.List(context.Background(), appointments.ListFilter{AnimalID: &animalID, Status: &status})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != 12 || out[1].ID != 11 {
		t.Fatalf("unexpected order: %+v", out)
	}
	if len(out[0].Lines) != 1 || out[0].Lines[0].ServiceName != "Bath" {
		t.Fatalf("lines not mapped to their appointment: %+v", out[0].Lines)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppointmentsRepo_List_PropagatesErrors(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectQuery(q("FROM appointments a")).WillReturnError(errors.New("boom"))

	out, err := repo.List(context.Background(), appointments.ListFilter{})
	if err == nil || out != nil {
		t.Fatalf("expected error and nil slice, got %v %v", out, err)
	}
}

// -------------------------
// Update
// -------------------------

func TestAppointmentsRepo_Update_ReplacesServicesWithCurrentPrices(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT id FROM appointments WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	expectPrices(mock, []any{int64(2)}, map[int64]string{2: "35.00"})
	mock.ExpectExec(q("DELETE FROM appointment_services WHERE appointment_id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("INSERT INTO appointment_services")).
		WithArgs(int64(10), int64(2), "35", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectGet(mock, 10, "Scheduled", "35.00", [][]any{{int64(10), int64(2), "Nail trim", "35.00", nil}})
	mock.ExpectCommit()

	a, err := repo.Update(context.Background(), 10, appointments.Patch{
		ServiceIDs: patch.Value([]int64{2}),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(a.Lines) != 1 || a.Lines[0].ServiceID != 2 || a.Total.StringFixed(2) != "35.00" {
		t.Fatalf("unexpected lines after replace: %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppointmentsRepo_Update_OnlyPresentColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE appointments SET status = $1, notes = $2 WHERE id = $3")).
		WithArgs("Cancelled", nil, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectGet(mock, 10, "Cancelled", "50.00", [][]any{{int64(10), int64(1), "Bath", "50.00", nil}})
	mock.ExpectCommit()

	a, err := repo.Update(context.Background(), 10, appointments.Patch{
		Status: patch.Value(appointments.StatusCancelled),
		Notes:  patch.Null[string](),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.Status != appointments.StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", a.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppointmentsRepo_Update_MissingHeaderRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE appointments SET status = $1 WHERE id = $2")).
		WithArgs("Confirmed", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 7, appointments.Patch{
		Status:     patch.Value(appointments.StatusConfirmed),
		ServiceIDs: patch.Value([]int64{1}),
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppointmentsRepo_Update_EmptyServiceListTouchesNothing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	_, err := repo.Update(context.Background(), 10, appointments.Patch{
		ServiceIDs: patch.Value([]int64{}),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement must run: %v", err)
	}
}

func TestAppointmentsRepo_Update_EmptyPatchRereads(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	expectGet(mock, 10, "Scheduled", "50.00", [][]any{{int64(10), int64(1), "Bath", "50.00", nil}})

	a, err := repo.Update(context.Background(), 10, appointments.Patch{})
	if err != nil || a.ID != 10 {
		t.Fatalf("expected plain re-read, got %+v %v", a, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// -------------------------
// Delete
// -------------------------

func TestAppointmentsRepo_Delete_RemovesLinesAndHeader(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM appointment_services WHERE appointment_id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM appointments WHERE id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.Delete(context.Background(), 10)
	if err != nil || !ok {
		t.Fatalf("expected deleted, got %v %v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppointmentsRepo_Delete_AbsentReturnsFalse(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM appointment_services")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM appointments")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.Delete(context.Background(), 10)
	if err != nil || ok {
		t.Fatalf("expected false without error, got %v %v", ok, err)
	}
}

func TestAppointmentsRepo_Delete_RowsAffectedErrorRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM appointment_services")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM appointments")).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver lost the count")))
	mock.ExpectRollback()

	ok, err := repo.Delete(context.Background(), 10)
	if err == nil || ok {
		t.Fatalf("expected error and false, got %v %v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppointmentsRepo_Update_RowsAffectedErrorIsNotNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE appointments SET status = $1 WHERE id = $2")).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver lost the count")))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 10, appointments.Patch{
		Status: patch.Value(appointments.StatusCompleted),
	})
	if err == nil || errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClientsRepo_Delete_RowsAffectedError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientsRepo(db)

	mock.ExpectExec(q("DELETE FROM clients WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver lost the count")))

	ok, err := repo.Delete(context.Background(), 4)
	if err == nil || ok {
		t.Fatalf("expected error and false, got %v %v", ok, err)
	}
}
