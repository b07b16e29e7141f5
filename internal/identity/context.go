// Package identity carries the authenticated user through request context.
// It is the single entry point for session/role state: handlers and services
// read an immutable snapshot instead of a mutable global.
package identity

import "context"

// Role determines which operations and screens apply to an account.
type Role string

const (
	RoleClient Role = "client"
	RoleDoctor Role = "doctor"
)

// Valid reports whether the role is one of the known account roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleDoctor
}

// Identity is an immutable snapshot of the signed-in user.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

type ctxKey string

const identityKey ctxKey = "careloop.identity"

// WithIdentity stores the identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the identity if present.
func FromContext(ctx context.Context) (Identity, bool) {
	val := ctx.Value(identityKey)
	if val == nil {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok && id.UserID != ""
}
