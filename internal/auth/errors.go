package auth

import "errors"

var (
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrUnknownRole is returned when the role is neither client nor doctor.
	ErrUnknownRole = errors.New("role must be client or doctor")

	// ErrMissingName is returned when first or last name is blank.
	ErrMissingName = errors.New("first and last name are required")

	// ErrEmailTaken is returned when an account already exists for the email.
	ErrEmailTaken = errors.New("an account with this email already exists")

	// ErrInvalidCredentials is returned for a wrong email or password. The two
	// cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
