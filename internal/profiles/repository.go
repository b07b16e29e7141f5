package profiles

import (
	"context"

	"github.com/careloop/clinic-platform/internal/identity"
)

// Repository defines the persistence surface for profile data. Account
// creation and credentials live with the auth package; this side only reads
// and updates the profile fields of existing users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
	// ListByRole returns profiles of one role ordered by last name. When
	// specialization is non-empty only matching doctors are returned.
	ListByRole(ctx context.Context, role identity.Role, specialization string) ([]*Profile, error)
}
