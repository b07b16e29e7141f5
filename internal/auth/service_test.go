package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/careloop/clinic-platform/internal/http/middleware"
	"github.com/careloop/clinic-platform/internal/identity"
)

const testSecret = "test-signing-secret"

type fakeAuthRepo struct {
	byEmail map[string]*User
	created *User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{byEmail: map[string]*User{}}
}

func (r *fakeAuthRepo) CreateUser(ctx context.Context, u *User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	u.ID = "user-1"
	u.CreatedAt = time.Now()
	r.created = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeAuthRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func validSignUp() SignUpRequest {
	return SignUpRequest{
		Email:     "Amina@Example.com",
		Password:  "correct horse",
		Role:      "client",
		FirstName: "Amina",
		LastName:  "Diallo",
		Phone:     "+2207781234",
	}
}

func TestSignUpHashesPasswordAndIssuesToken(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testSecret, time.Hour, nil)

	sess, err := svc.SignUp(context.Background(), validSignUp())
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if repo.created == nil {
		t.Fatal("expected a user row")
	}
	if repo.created.Email != "amina@example.com" {
		t.Fatalf("email not normalized: %q", repo.created.Email)
	}
	if repo.created.PasswordHash == "correct horse" {
		t.Fatal("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("correct horse")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if sess.Role != identity.RoleClient || sess.UserID != "user-1" {
		t.Fatalf("session = %+v", sess)
	}

	claims := middleware.SessionClaims{}
	token, err := jwt.ParseWithClaims(sess.Token, &claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "client" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc := NewService(newFakeAuthRepo(), testSecret, time.Hour, nil)
	cases := []struct {
		name    string
		mutate  func(*SignUpRequest)
		wantErr error
	}{
		{"bad email", func(r *SignUpRequest) { r.Email = "not-an-email" }, ErrInvalidEmail},
		{"short password", func(r *SignUpRequest) { r.Password = "short" }, ErrWeakPassword},
		{"bad role", func(r *SignUpRequest) { r.Role = "admin" }, ErrUnknownRole},
		{"no name", func(r *SignUpRequest) { r.FirstName = " " }, ErrMissingName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSignUp()
			tc.mutate(&req)
			if _, err := svc.SignUp(context.Background(), req); !errors.Is(err, tc.wantErr) {
				t.Fatalf("SignUp error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testSecret, time.Hour, nil)

	if _, err := svc.SignUp(context.Background(), validSignUp()); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	if _, err := svc.SignUp(context.Background(), validSignUp()); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("second SignUp error = %v, want ErrEmailTaken", err)
	}
}

func TestSignInVerifiesPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testSecret, time.Hour, nil)

	if _, err := svc.SignUp(context.Background(), validSignUp()); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	sess, err := svc.SignIn(context.Background(), SignInRequest{Email: "amina@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.UserID != "user-1" {
		t.Fatalf("session = %+v", sess)
	}

	if _, err := svc.SignIn(context.Background(), SignInRequest{Email: "amina@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.SignIn(context.Background(), SignInRequest{Email: "nobody@example.com", Password: "correct horse"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestSessionExpiryHonorsTTL(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, testSecret, 30*time.Minute, nil)
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	sess, err := svc.SignUp(context.Background(), validSignUp())
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if !sess.ExpiresAt.Equal(fixed.Add(30 * time.Minute)) {
		t.Fatalf("expires_at = %s", sess.ExpiresAt)
	}
}
