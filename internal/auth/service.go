package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/careloop/clinic-platform/internal/http/middleware"
	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// Service registers accounts and issues session tokens.
type Service struct {
	repo     Repository
	secret   []byte
	tokenTTL time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

// NewService constructs an auth service signing tokens with secret.
func NewService(repo Repository, secret string, tokenTTL time.Duration, logger *logging.Logger) *Service {
	if repo == nil {
		panic("auth: repository required")
	}
	if secret == "" {
		panic("auth: signing secret required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// SignUp creates an account and signs the caller in immediately.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	u := &User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         identity.Role(req.Role),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("account created", "user_id", u.ID, "role", u.Role)
	return s.issueSession(u)
}

// SignIn verifies credentials and returns a fresh session token.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	s.logger.Info("sign in", "user_id", u.ID)
	return s.issueSession(u)
}

func (s *Service) issueSession(u *User) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := middleware.SessionClaims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
	}, nil
}
