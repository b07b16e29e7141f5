package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/careloop/clinic-platform/internal/appointments"
	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("careloop.internal.profiles")

// Service reads and updates profiles with a cache in front of the store.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *logging.Logger
}

// NewService constructs a profiles service. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *logging.Logger) *Service {
	if repo == nil {
		panic("profiles: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Get returns the profile for id, from cache when possible.
func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	if p := s.cache.Get(ctx, id); p != nil {
		return p, nil
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, p)
	return p, nil
}

// Update overlays the non-empty request fields onto the stored profile,
// validates the merged result for the account's role, and persists it.
// Fields the form left blank keep their stored values.
func (s *Service) Update(ctx context.Context, actor identity.Identity, req UpdateRequest) (*Profile, error) {
	ctx, span := tracer.Start(ctx, "profiles.update")
	defer span.End()

	p, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	req.applyTo(p)
	if err := validateMerged(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.cache.Invalidate(ctx, p.ID)
	s.logger.Info("profile updated", "user_id", p.ID, "role", p.Role)
	return p, nil
}

// ListDoctors returns doctor profiles, optionally narrowed to a specialization.
func (s *Service) ListDoctors(ctx context.Context, specialization string) ([]*Profile, error) {
	specialization = strings.TrimSpace(specialization)
	if specialization != "" && !appointments.KnownSpecialization(specialization) {
		return nil, ErrUnknownSpecialization
	}
	return s.repo.ListByRole(ctx, identity.RoleDoctor, specialization)
}

// ListClients returns all client profiles for the doctor-facing directory.
func (s *Service) ListClients(ctx context.Context) ([]*Profile, error) {
	return s.repo.ListByRole(ctx, identity.RoleClient, "")
}

// GetDoctor resolves a doctor account for booking validation. It satisfies
// the appointments directory interface: a missing id or a non-doctor account
// maps to appointments.ErrUnknownDoctor, while store failures pass through
// untranslated so an outage is not mistaken for a booking error.
func (s *Service) GetDoctor(ctx context.Context, id string) (*appointments.Doctor, error) {
	p, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, appointments.ErrUnknownDoctor
	}
	if err != nil {
		return nil, err
	}
	if p.Role != identity.RoleDoctor {
		return nil, fmt.Errorf("%w: %w", appointments.ErrUnknownDoctor, ErrNotDoctor)
	}
	return &appointments.Doctor{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}, nil
}

func validateMerged(p *Profile) error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(p.Phone) == "" {
		return ErrMissingPhone
	}
	if p.Role == identity.RoleDoctor {
		if strings.TrimSpace(p.Specialization) == "" {
			return ErrMissingSpecialization
		}
		if !appointments.KnownSpecialization(p.Specialization) {
			return ErrUnknownSpecialization
		}
		if strings.TrimSpace(p.Hospital) == "" {
			return ErrMissingHospital
		}
	}
	return nil
}
