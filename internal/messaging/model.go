// Package messaging implements direct chat between clients and doctors with
// stored history and live delivery over WebSockets.
package messaging

import (
	"strings"
	"time"
)

// Message is one chat message between two accounts.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// maxBodyLength caps a single chat message.
const maxBodyLength = 4000

// ConversationID derives the stable id for a pair of participants. The two
// orderings map to the same conversation.
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return "chat:" + a + ":" + b
}

// SendRequest is the payload for posting a message.
type SendRequest struct {
	RecipientID string `json:"recipient_id"`
	Body        string `json:"body"`
}

// Validate checks the outgoing message.
func (r *SendRequest) Validate(senderID string) error {
	r.RecipientID = strings.TrimSpace(r.RecipientID)
	if r.RecipientID == "" {
		return ErrMissingRecipient
	}
	if r.RecipientID == senderID {
		return ErrSelfMessage
	}
	r.Body = strings.TrimSpace(r.Body)
	if r.Body == "" {
		return ErrEmptyBody
	}
	if len(r.Body) > maxBodyLength {
		return ErrBodyTooLong
	}
	return nil
}
