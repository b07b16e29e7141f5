package messaging

import "errors"

var (
	// ErrMissingRecipient is returned when no recipient was named.
	ErrMissingRecipient = errors.New("recipient is required")

	// ErrSelfMessage is returned when sender and recipient are the same account.
	ErrSelfMessage = errors.New("cannot message yourself")

	// ErrEmptyBody is returned for a blank message body.
	ErrEmptyBody = errors.New("message body is required")

	// ErrBodyTooLong is returned when the body exceeds the length cap.
	ErrBodyTooLong = errors.New("message body is too long")

	// ErrUnknownRecipient is returned when the recipient account does not exist.
	ErrUnknownRecipient = errors.New("recipient account does not exist")
)
