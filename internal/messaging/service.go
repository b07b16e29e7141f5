package messaging

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("careloop.internal.messaging")

// RecipientDirectory checks that a recipient account exists.
type RecipientDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// Service stores messages and pushes them to live sessions.
type Service struct {
	repo      Repository
	hub       *Hub
	directory RecipientDirectory
	logger    *logging.Logger
}

// NewService constructs a messaging service. directory may be nil to skip
// recipient checks.
func NewService(repo Repository, hub *Hub, directory RecipientDirectory, logger *logging.Logger) *Service {
	if repo == nil {
		panic("messaging: repository required")
	}
	if hub == nil {
		panic("messaging: hub required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, hub: hub, directory: directory, logger: logger}
}

// Send validates, persists and delivers one message from the actor.
func (s *Service) Send(ctx context.Context, actor identity.Identity, req SendRequest) (*Message, error) {
	ctx, span := tracer.Start(ctx, "messaging.send")
	defer span.End()

	if err := req.Validate(actor.UserID); err != nil {
		return nil, err
	}
	if s.directory != nil {
		exists, err := s.directory.Exists(ctx, req.RecipientID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if !exists {
			return nil, ErrUnknownRecipient
		}
	}

	msg := &Message{
		ConversationID: ConversationID(actor.UserID, req.RecipientID),
		SenderID:       actor.UserID,
		RecipientID:    req.RecipientID,
		Body:           req.Body,
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		span.RecordError(err)
		return nil, err
	}
	// Both sides get the live push so the sender's other devices stay in sync.
	s.hub.Deliver(ctx, msg.RecipientID, msg)
	s.hub.Deliver(ctx, msg.SenderID, msg)
	s.logger.Info("message sent",
		"message_id", msg.ID, "conversation_id", msg.ConversationID)
	return msg, nil
}

// History returns the newest messages between the actor and otherID.
func (s *Service) History(ctx context.Context, actor identity.Identity, otherID string, limit int) ([]*Message, error) {
	if otherID == "" {
		return nil, ErrMissingRecipient
	}
	return s.repo.ListConversation(ctx, ConversationID(actor.UserID, otherID), limit)
}

// Subscribe attaches a live connection for the actor.
func (s *Service) Subscribe(actor identity.Identity, conn Conn) *Session {
	return s.hub.Attach(actor.UserID, conn)
}

// IsValidationError reports whether err came from message validation.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrMissingRecipient),
		errors.Is(err, ErrSelfMessage),
		errors.Is(err, ErrEmptyBody),
		errors.Is(err, ErrBodyTooLong):
		return true
	}
	return false
}
