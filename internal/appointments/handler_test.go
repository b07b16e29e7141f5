package appointments

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/clinic-platform/internal/identity"
)

func newTestHandler(t *testing.T, repo *fakeRepo) http.Handler {
	t.Helper()
	svc, _ := newTestService(repo, nil)
	h := NewHandler(svc, nil)
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, actor *identity.Identity, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if actor != nil {
		req = req.WithContext(identity.WithIdentity(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerBookCreated(t *testing.T) {
	h := newTestHandler(t, newFakeRepo())
	body := `{"doctor_id":"doc-1","specialization":"Cardiology","date":"2026-03-12","time":"14:30","description":"chest pain"}`

	rec := doRequest(t, h, &clientActor, http.MethodPost, "/appointments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var appt Appointment
	if err := json.NewDecoder(rec.Body).Decode(&appt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if appt.Status != StatusPending || appt.ClientID != "client-1" {
		t.Fatalf("unexpected appointment: %+v", appt)
	}
}

func TestHandlerBookValidationIs400(t *testing.T) {
	h := newTestHandler(t, newFakeRepo())
	body := `{"doctor_id":"doc-1","specialization":"Astrology","date":"2026-03-12","time":"14:30","description":"x"}`

	rec := doRequest(t, h, &clientActor, http.MethodPost, "/appointments", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerBookUnknownDoctorIs400(t *testing.T) {
	h := newTestHandler(t, newFakeRepo())
	body := `{"doctor_id":"nope-9","specialization":"Cardiology","date":"2026-03-12","time":"14:30","description":"chest pain"}`

	rec := doRequest(t, h, &clientActor, http.MethodPost, "/appointments", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(payload["error"], "doctor") {
		t.Fatalf("error message = %q, want it to name the doctor field", payload["error"])
	}
}

func TestHandlerUnauthenticatedIs401(t *testing.T) {
	h := newTestHandler(t, newFakeRepo())
	rec := doRequest(t, h, nil, http.MethodGet, "/appointments", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerGetMapsErrors(t *testing.T) {
	existing := &Appointment{ID: "a1", ClientID: "client-1", DoctorID: "doc-1", Status: StatusPending}
	h := newTestHandler(t, newFakeRepo(existing))

	rec := doRequest(t, h, &clientActor, http.MethodGet, "/appointments/a1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("own appointment: status = %d", rec.Code)
	}

	rec = doRequest(t, h, &clientActor, http.MethodGet, "/appointments/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing appointment: status = %d, want 404", rec.Code)
	}

	stranger := identity.Identity{UserID: "intruder", Role: identity.RoleClient}
	rec = doRequest(t, h, &stranger, http.MethodGet, "/appointments/a1", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign appointment: status = %d, want 403", rec.Code)
	}
}

func TestHandlerApproveAndConflicts(t *testing.T) {
	existing := &Appointment{ID: "a1", ClientID: "client-1", DoctorID: "doc-1", Status: StatusPending}
	h := newTestHandler(t, newFakeRepo(existing))

	rec := doRequest(t, h, &doctorActor, http.MethodPost, "/appointments/a1/complete", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("pending -> completed: status = %d, want 409", rec.Code)
	}

	rec = doRequest(t, h, &doctorActor, http.MethodPost, "/appointments/a1/approve", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var appt Appointment
	if err := json.NewDecoder(rec.Body).Decode(&appt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if appt.Status != StatusApproved {
		t.Fatalf("status = %s, want approved", appt.Status)
	}
}

func TestHandlerCancelPending(t *testing.T) {
	existing := &Appointment{ID: "a1", ClientID: "client-1", DoctorID: "doc-1", Status: StatusPending}
	repo := newFakeRepo(existing)
	h := newTestHandler(t, repo)

	rec := doRequest(t, h, &clientActor, http.MethodDelete, "/appointments/a1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: status = %d", rec.Code)
	}
	if repo.deleted != "a1" {
		t.Fatalf("deleted = %q", repo.deleted)
	}
}

func TestHandlerEditDecidedIs409(t *testing.T) {
	existing := &Appointment{ID: "a1", ClientID: "client-1", DoctorID: "doc-1", Status: StatusRejected}
	h := newTestHandler(t, newFakeRepo(existing))
	body := `{"doctor_id":"doc-1","specialization":"Cardiology","date":"2026-03-12","time":"14:30","description":"retry"}`

	rec := doRequest(t, h, &clientActor, http.MethodPut, "/appointments/a1", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("edit decided: status = %d, want 409", rec.Code)
	}
}

func TestHandlerListWrapsArray(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, nil)
	h := NewHandler(svc, nil)
	r := chi.NewRouter()
	h.Routes(r)

	rec := doRequest(t, r, &clientActor, http.MethodGet, "/appointments", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"appointments":[`) {
		t.Fatalf("expected an array payload, got %s", rec.Body.String())
	}
}
