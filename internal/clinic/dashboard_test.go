package clinic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/careloop/clinic-platform/internal/identity"
)

func doctorRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	actor := identity.Identity{UserID: "doc-1", Email: "maya@example.com", Role: identity.RoleDoctor}
	return req.WithContext(identity.WithIdentity(req.Context(), actor))
}

func TestDoctorDashboardWithWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	handler := NewDashboardHandler(NewDashboardRepository(db), nil)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM appointments WHERE doctor_id = \$1 AND scheduled_for >= \$2 AND scheduled_for < \$3 GROUP BY status`).
		WithArgs("doc-1", start, end).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("approved", 4).
			AddRow("completed", 2).
			AddRow("rejected", 1))

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT client_id\) FROM appointments WHERE doctor_id = \$1 AND scheduled_for >= \$2 AND scheduled_for < \$3`).
		WithArgs("doc-1", start, end).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	req := doctorRequest("/dashboard?start=2026-03-01T00:00:00Z&end=2026-04-01T00:00:00Z")
	rec := httptest.NewRecorder()
	handler.GetDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp DoctorDashboard
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pending != 3 || resp.Approved != 4 || resp.Completed != 2 || resp.Rejected != 1 {
		t.Fatalf("counts = %+v", resp)
	}
	if resp.DistinctPatients != 7 {
		t.Fatalf("distinct patients = %d", resp.DistinctPatients)
	}
	if resp.CompletionPct != 20.0 {
		t.Fatalf("completion pct = %f, want 20.0", resp.CompletionPct)
	}
	if resp.PeriodStart != "2026-03-01T00:00:00Z" || resp.PeriodEnd != "2026-04-01T00:00:00Z" {
		t.Fatalf("window = %s - %s", resp.PeriodStart, resp.PeriodEnd)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDoctorDashboardAllTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	handler := NewDashboardHandler(NewDashboardRepository(db), nil)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM appointments WHERE doctor_id = \$1 GROUP BY status`).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT client_id\) FROM appointments WHERE doctor_id = \$1`).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rec := httptest.NewRecorder()
	handler.GetDashboard(rec, doctorRequest("/dashboard"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp DoctorDashboard
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CompletionPct != 0 {
		t.Fatalf("completion pct = %f, want 0 for an empty caseload", resp.CompletionPct)
	}
	if resp.PeriodStart != "all-time" || resp.PeriodEnd != "now" {
		t.Fatalf("window = %s - %s", resp.PeriodStart, resp.PeriodEnd)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDoctorDashboardRejectsHalfWindow(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	handler := NewDashboardHandler(NewDashboardRepository(db), nil)

	rec := httptest.NewRecorder()
	handler.GetDashboard(rec, doctorRequest("/dashboard?start=2026-03-01T00:00:00Z"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDoctorDashboardDisabledWithoutDB(t *testing.T) {
	handler := NewDashboardHandler(NewDashboardRepository(nil), nil)

	rec := httptest.NewRecorder()
	handler.GetDashboard(rec, doctorRequest("/dashboard"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
