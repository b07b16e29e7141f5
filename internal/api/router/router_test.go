package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/careloop/clinic-platform/internal/auth"
	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/internal/notifications"
	"github.com/careloop/clinic-platform/internal/profiles"
)

const testSecret = "router-test-secret"

type memAuthRepo struct {
	users map[string]*auth.User
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{users: make(map[string]*auth.User)}
}

func (r *memAuthRepo) CreateUser(ctx context.Context, u *auth.User) error {
	if _, ok := r.users[u.Email]; ok {
		return auth.ErrEmailTaken
	}
	u.ID = "user-" + u.Email
	u.CreatedAt = time.Now()
	r.users[u.Email] = u
	return nil
}

func (r *memAuthRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

type memProfileRepo struct{}

func (memProfileRepo) GetByID(ctx context.Context, id string) (*profiles.Profile, error) {
	return &profiles.Profile{ID: id, Email: id + "@example.com", Role: identity.RoleClient}, nil
}

func (memProfileRepo) Update(ctx context.Context, p *profiles.Profile) error { return nil }

func (memProfileRepo) ListByRole(ctx context.Context, role identity.Role, specialization string) ([]*profiles.Profile, error) {
	return nil, nil
}

type memFeedRepo struct{}

func (memFeedRepo) Insert(ctx context.Context, n *notifications.Notification) error { return nil }

func (memFeedRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*notifications.Notification, error) {
	return nil, nil
}

func (memFeedRepo) MarkRead(ctx context.Context, id, userID string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	authService := auth.NewService(newMemAuthRepo(), testSecret, time.Hour, nil)
	profileService := profiles.NewService(memProfileRepo{}, nil, nil)
	return New(&Config{
		AuthHandler:          auth.NewHandler(authService, nil),
		ProfilesHandler:      profiles.NewHandler(profileService, nil),
		NotificationsHandler: notifications.NewHandler(memFeedRepo{}, nil),
		SessionSecret:        testSecret,
	})
}

func signUp(t *testing.T, router http.Handler, email string, role identity.Role) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"hunter2-long","role":%q,"first_name":"Amina","last_name":"Diallo"}`,
		email, role)
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var sess auth.Session
	if err := json.NewDecoder(rec.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("empty session token")
	}
	return sess.Token
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterRejectsMissingToken(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRouterAcceptsSessionToken(t *testing.T) {
	router := newTestRouter(t)
	token := signUp(t, router, "amina@example.com", identity.RoleClient)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRouterDoctorOnlyRoutes(t *testing.T) {
	router := newTestRouter(t)

	clientToken := signUp(t, router, "amina@example.com", identity.RoleClient)
	doctorToken := signUp(t, router, "maya@example.com", identity.RoleDoctor)

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("client status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("Authorization", "Bearer "+doctorToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("doctor status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
