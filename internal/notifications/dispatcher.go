package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/careloop/clinic-platform/internal/notify"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// Recipient is the contact slice of a profile the dispatcher needs.
type Recipient struct {
	Name  string
	Email string
}

// RecipientResolver looks up where to email a notification.
type RecipientResolver interface {
	Resolve(ctx context.Context, userID string) (*Recipient, error)
}

// Dispatcher drains the queue: each event becomes a feed row and, when an
// email sender is configured, an email to the recipient.
type Dispatcher struct {
	queue    queueClient
	repo     Repository
	resolver RecipientResolver
	emails   notify.EmailSender
	logger   *logging.Logger

	receiveWait int
	batchSize   int
}

// NewDispatcher constructs a dispatcher. emails and resolver may be nil, in
// which case events only land in the feed.
func NewDispatcher(queue queueClient, repo Repository, resolver RecipientResolver, emails notify.EmailSender, logger *logging.Logger) *Dispatcher {
	if queue == nil {
		panic("notifications: queue required")
	}
	if repo == nil {
		panic("notifications: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		queue:       queue,
		repo:        repo,
		resolver:    resolver,
		emails:      emails,
		logger:      logger,
		receiveWait: 10,
		batchSize:   10,
	}
}

// Run processes events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("notification dispatcher started")
	for {
		if ctx.Err() != nil {
			d.logger.Info("notification dispatcher stopped")
			return
		}
		messages, err := d.queue.Receive(ctx, d.batchSize, d.receiveWait)
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("notification dispatcher stopped")
				return
			}
			d.logger.Error("failed to receive notification events", "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, msg := range messages {
			if err := d.process(ctx, msg.Body); err != nil {
				d.logger.Error("failed to process notification event",
					"message_id", msg.ID, "error", err)
				// Leave the message for redelivery.
				continue
			}
			if err := d.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				d.logger.Error("failed to delete notification event",
					"message_id", msg.ID, "error", err)
			}
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, body string) error {
	evt, err := decodeEvent(body)
	if err != nil {
		return err
	}
	n := &Notification{
		ID:            evt.ID,
		UserID:        evt.RecipientID,
		Title:         evt.Title,
		Body:          evt.Body,
		AppointmentID: evt.AppointmentID,
	}
	err = d.repo.Insert(ctx, n)
	if errors.Is(err, ErrAlreadyStored) {
		// Redelivered event: the feed row exists and the email either went
		// out already or was best effort. Ack without resending.
		d.logger.Info("skipping redelivered notification event", "event_id", evt.ID)
		return nil
	}
	if err != nil {
		return err
	}
	d.sendEmail(ctx, evt)
	return nil
}

// sendEmail is best effort: the feed row is the source of truth and a mail
// failure must not cause a queue redelivery.
func (d *Dispatcher) sendEmail(ctx context.Context, evt Event) {
	if d.emails == nil || d.resolver == nil {
		return
	}
	recipient, err := d.resolver.Resolve(ctx, evt.RecipientID)
	if err != nil {
		d.logger.Error("failed to resolve notification recipient",
			"user_id", evt.RecipientID, "error", err)
		return
	}
	if recipient.Email == "" {
		return
	}
	err = d.emails.Send(ctx, notify.EmailMessage{
		To:      recipient.Email,
		ToName:  recipient.Name,
		Subject: evt.Title,
		Body:    evt.Body,
	})
	if err != nil {
		d.logger.Error("failed to email notification",
			"user_id", evt.RecipientID, "error", err)
	}
}
