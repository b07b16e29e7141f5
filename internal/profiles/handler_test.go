package profiles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/clinic-platform/internal/identity"
)

func newTestHandler(repo *fakeProfileRepo) http.Handler {
	h := NewHandler(NewService(repo, nil, nil), nil)
	r := chi.NewRouter()
	h.Routes(r)
	h.ClientDirectoryRoutes(r)
	return r
}

func doRequest(h http.Handler, actor *identity.Identity, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if actor != nil {
		req = req.WithContext(identity.WithIdentity(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGetMe(t *testing.T) {
	h := newTestHandler(newFakeProfileRepo(seedClient()))
	actor := clientIdentity()

	rec := doRequest(h, &actor, http.MethodGet, "/profiles/me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var p Profile
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != "client-1" || p.BloodType != "A+" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestHandlerUpdateMePartial(t *testing.T) {
	h := newTestHandler(newFakeProfileRepo(seedClient()))
	actor := clientIdentity()

	rec := doRequest(h, &actor, http.MethodPut, "/profiles/me", `{"weight":"72kg"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var p Profile
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Weight != "72kg" || p.FirstName != "Amina" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestHandlerUpdateMeValidationIs400(t *testing.T) {
	actor := identity.Identity{UserID: "doc-1", Role: identity.RoleDoctor}
	h := newTestHandler(newFakeProfileRepo(seedDoctor()))

	rec := doRequest(h, &actor, http.MethodPut, "/profiles/me", `{"specialization":"Astrology"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerListDoctors(t *testing.T) {
	h := newTestHandler(newFakeProfileRepo(seedDoctor(), seedClient()))
	actor := clientIdentity()

	rec := doRequest(h, &actor, http.MethodGet, "/doctors?specialization=Cardiology", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Doctors []*Profile `json:"doctors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Doctors) != 1 || payload.Doctors[0].ID != "doc-1" {
		t.Fatalf("doctors = %+v", payload.Doctors)
	}
}

func TestHandlerUnauthenticatedIs401(t *testing.T) {
	h := newTestHandler(newFakeProfileRepo())
	rec := doRequest(h, nil, http.MethodGet, "/profiles/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
