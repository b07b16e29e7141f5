// Package auth implements account registration and token-based sign-in.
package auth

import (
	"net/mail"
	"strings"
	"time"

	"github.com/careloop/clinic-platform/internal/identity"
)

// User is an account row with its credential hash. The hash never leaves
// this package.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         identity.Role
	FirstName    string
	LastName     string
	Phone        string
	CreatedAt    time.Time
}

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

const minPasswordLength = 8

// Validate normalizes and checks the registration form.
func (r *SignUpRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrInvalidEmail
	}
	if len(r.Password) < minPasswordLength {
		return ErrWeakPassword
	}
	if !identity.Role(r.Role).Valid() {
		return ErrUnknownRole
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrMissingName
	}
	return nil
}

// SignInRequest is the login payload.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned after a successful sign-up or sign-in.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	Role      identity.Role `json:"role"`
}
