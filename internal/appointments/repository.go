package appointments

import "context"

// Repository defines the persistence surface for appointments.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	// UpdateDetails overwrites the mutable booking fields of a pending
	// appointment. The WHERE clause re-checks pending status so a racing
	// doctor decision wins.
	UpdateDetails(ctx context.Context, appt *Appointment) error
	// UpdateStatus performs a conditional status write (compare-and-set on the
	// current status) and returns ErrStaleStatus when no row matched.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	// DeletePending removes a pending appointment; ErrStaleStatus when the
	// status moved on before the delete landed.
	DeletePending(ctx context.Context, id string) error
	ListByClient(ctx context.Context, clientID string) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error)
}
