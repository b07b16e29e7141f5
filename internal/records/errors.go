package records

import "errors"

var (
	// ErrMissingFile is returned when the multipart form has no file part.
	ErrMissingFile = errors.New("a file is required")

	// ErrMissingName is returned when the record name is blank.
	ErrMissingName = errors.New("record name is required")

	// ErrUnknownCategory is returned for categories outside the known set.
	ErrUnknownCategory = errors.New("category must be prescription or lab_result")

	// ErrTooLarge is returned when the upload exceeds the size cap.
	ErrTooLarge = errors.New("file exceeds the 10MB upload limit")

	// ErrNotFound is returned when no record exists for the id and owner.
	ErrNotFound = errors.New("record not found")
)
