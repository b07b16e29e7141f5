package profiles

import "errors"

var (
	// ErrNotFound is returned when no account exists for the id or email.
	ErrNotFound = errors.New("profile not found")

	// ErrMissingName is returned when a merged profile would have no name.
	ErrMissingName = errors.New("first and last name are required")

	// ErrMissingPhone is returned when a merged profile would have no phone.
	ErrMissingPhone = errors.New("phone number is required")

	// ErrMissingSpecialization is returned when a doctor profile would end up
	// without a specialization.
	ErrMissingSpecialization = errors.New("specialization is required for doctors")

	// ErrUnknownSpecialization is returned when a doctor sets a specialization
	// outside the offered categories.
	ErrUnknownSpecialization = errors.New("specialization is not a known category")

	// ErrMissingHospital is returned when a doctor profile would end up
	// without a hospital.
	ErrMissingHospital = errors.New("hospital is required for doctors")

	// ErrNotDoctor is returned when a doctor-only lookup targets a client.
	ErrNotDoctor = errors.New("account is not a doctor")
)
