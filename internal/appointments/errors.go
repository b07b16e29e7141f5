package appointments

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDoctor is returned when no doctor was selected.
	ErrMissingDoctor = errors.New("doctor is required")

	// ErrUnknownDoctor is returned when the selected id is not a doctor account.
	ErrUnknownDoctor = errors.New("selected doctor does not exist")

	// ErrMissingDescription is returned when the free-text description is empty.
	ErrMissingDescription = errors.New("description is required")

	// ErrUnknownSpecialization is returned when the specialization is empty or
	// not in the enumerated category list.
	ErrUnknownSpecialization = errors.New("specialization is not a known category")

	// ErrInvalidSchedule is returned for unparseable date or time values.
	ErrInvalidSchedule = errors.New("invalid date or time")

	// ErrPastSchedule is returned when the combined date and time are before now.
	ErrPastSchedule = errors.New("appointment cannot be in the past")

	// ErrNotFound is returned when the appointment does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrNotParticipant is returned when the actor is neither the appointment's
	// client nor its doctor.
	ErrNotParticipant = errors.New("appointment does not belong to this account")

	// ErrNotPending is returned when a client edit or cancel targets an
	// appointment that has already been decided.
	ErrNotPending = errors.New("appointment is no longer pending")

	// ErrStaleStatus is returned when a conditional status write matched no row,
	// meaning the status changed underneath the caller.
	ErrStaleStatus = errors.New("appointment status changed concurrently")
)

// TransitionError reports a disallowed status transition. It is checked before
// any write is attempted.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("appointments: transition %s -> %s is not allowed", e.From, e.To)
}

// IsValidation reports whether err is a booking-form validation failure, as
// opposed to a store or authorization failure.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrMissingDoctor),
		errors.Is(err, ErrUnknownDoctor),
		errors.Is(err, ErrMissingDescription),
		errors.Is(err, ErrUnknownSpecialization),
		errors.Is(err, ErrInvalidSchedule),
		errors.Is(err, ErrPastSchedule):
		return true
	}
	return false
}
