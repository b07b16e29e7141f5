package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepository(mock)
}

func TestPostgresRepositoryInsert(t *testing.T) {
	mock, repo := newMockRepo(t)
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), "client-1", "Appointment approved", "Your appointment was approved.", "appt-1").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	n := &Notification{
		UserID:        "client-1",
		Title:         "Appointment approved",
		Body:          "Your appointment was approved.",
		AppointmentID: "appt-1",
	}
	if err := repo.Insert(context.Background(), n); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if n.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if !n.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v", n.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepositoryInsertDuplicateID(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs("evt-1", "client-1", "Appointment approved", "body", "appt-1").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "notifications_pkey"})

	n := &Notification{
		ID:            "evt-1",
		UserID:        "client-1",
		Title:         "Appointment approved",
		Body:          "body",
		AppointmentID: "appt-1",
	}
	if err := repo.Insert(context.Background(), n); !errors.Is(err, ErrAlreadyStored) {
		t.Fatalf("err = %v, want ErrAlreadyStored", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepositoryListByUser(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "user_id", "title", "body", "appointment_id", "read", "created_at"}).
		AddRow("n-2", "client-1", "Appointment approved", "body", "appt-1", false, now).
		AddRow("n-1", "client-1", "New appointment request", "body", "appt-1", true, now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT id, user_id, title, body, appointment_id, read, created_at`).
		WithArgs("client-1", defaultFeedLimit).
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "client-1", 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "n-2" || items[1].Read != true {
		t.Fatalf("items = %+v, %+v", items[0], items[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepositoryMarkRead(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`UPDATE notifications SET read = true`).
		WithArgs("n-1", "client-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkRead(context.Background(), "n-1", "client-1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepositoryMarkReadWrongOwner(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`UPDATE notifications SET read = true`).
		WithArgs("n-1", "someone-else").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkRead(context.Background(), "n-1", "someone-else")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
