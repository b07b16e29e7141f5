package notifications

import (
	"context"

	"github.com/careloop/clinic-platform/internal/appointments"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// Publisher turns appointment lifecycle changes into queued notification
// events. It satisfies the appointments event-publisher interface.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a publisher over a queue.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("notifications: queue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// NewMemoryPublisher is a convenience constructor for development setups.
func NewMemoryPublisher(queue *MemoryQueue, logger *logging.Logger) *Publisher {
	return NewPublisher(queue, logger)
}

// NewSQSPublisher wires the publisher to SQS.
func NewSQSPublisher(queue *SQSQueue, logger *logging.Logger) *Publisher {
	return NewPublisher(queue, logger)
}

// AppointmentChanged enqueues a notification event for recipientID.
func (p *Publisher) AppointmentChanged(ctx context.Context, appt *appointments.Appointment, recipientID string) error {
	evt, body, err := encodeEvent(eventForAppointment(appt, recipientID))
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return err
	}
	p.logger.Debug("notification event queued",
		"event_id", evt.ID, "recipient_id", recipientID, "appointment_id", appt.ID)
	return nil
}
