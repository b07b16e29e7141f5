package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("careloop.internal.appointments")

// Doctor is the slice of a user profile the booking flow needs.
type Doctor struct {
	ID        string
	FirstName string
	LastName  string
}

// DisplayName renders the name shown on appointment cards.
func (d Doctor) DisplayName() string {
	if d.FirstName == "" && d.LastName == "" {
		return "Unknown Doctor"
	}
	return fmt.Sprintf("%s %s", d.FirstName, d.LastName)
}

// DoctorDirectory resolves doctor accounts for booking validation.
// Implementations return ErrUnknownDoctor when the id does not belong to a
// doctor account, so lookups against missing ids stay a validation failure.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id string) (*Doctor, error)
}

// EventPublisher receives lifecycle events for the notification pipeline.
// Publish failures are logged, never surfaced: the mutation already happened.
type EventPublisher interface {
	AppointmentChanged(ctx context.Context, appt *Appointment, recipientID string) error
}

// Metrics records appointment counters; a nil value disables recording.
type Metrics interface {
	ObserveBooked(specialization string)
	ObserveTransition(to string, ok bool)
}

// Service owns the appointment lifecycle: booking validation, the status
// state machine, and participant authorization.
type Service struct {
	repo    Repository
	doctors DoctorDirectory
	events  EventPublisher
	metrics Metrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewService constructs an appointments service. events and metrics may be nil.
func NewService(repo Repository, doctors DoctorDirectory, events EventPublisher, metrics Metrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if doctors == nil {
		panic("appointments: doctor directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:    repo,
		doctors: doctors,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Book validates the form and creates a pending appointment owned by the actor.
func (s *Service) Book(ctx context.Context, actor identity.Identity, req BookRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.book")
	defer span.End()

	if actor.Role != identity.RoleClient {
		return nil, ErrNotParticipant
	}
	req.ClientID = actor.UserID

	scheduledFor, err := req.Validate(s.now())
	if err != nil {
		return nil, err
	}
	doctor, err := s.resolveDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		ClientID:       req.ClientID,
		DoctorID:       doctor.ID,
		DoctorName:     doctor.DisplayName(),
		Specialization: req.Specialization,
		Date:           req.Date,
		Time:           req.Time,
		Description:    req.Description,
		Status:         StatusPending,
		ScheduledFor:   scheduledFor,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("careloop.appointment_id", appt.ID))
	if s.metrics != nil {
		s.metrics.ObserveBooked(appt.Specialization)
	}
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID, "client_id", appt.ClientID, "doctor_id", appt.DoctorID)
	s.publish(ctx, appt, appt.DoctorID)
	return appt, nil
}

// Edit overwrites the mutable fields of the actor's pending appointment,
// applying the same validation as Book. Status stays pending.
func (s *Service) Edit(ctx context.Context, actor identity.Identity, id string, req BookRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.edit")
	defer span.End()

	appt, err := s.loadForClient(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusPending {
		return nil, ErrNotPending
	}

	scheduledFor, err := req.Validate(s.now())
	if err != nil {
		return nil, err
	}
	doctor, err := s.resolveDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	appt.DoctorID = doctor.ID
	appt.DoctorName = doctor.DisplayName()
	appt.Specialization = req.Specialization
	appt.Date = req.Date
	appt.Time = req.Time
	appt.Description = req.Description
	appt.ScheduledFor = scheduledFor
	if err := s.repo.UpdateDetails(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("appointment updated", "appointment_id", appt.ID, "client_id", actor.UserID)
	return appt, nil
}

// Cancel permanently removes the actor's pending appointment.
func (s *Service) Cancel(ctx context.Context, actor identity.Identity, id string) error {
	ctx, span := tracer.Start(ctx, "appointments.cancel")
	defer span.End()

	appt, err := s.loadForClient(ctx, actor, id)
	if err != nil {
		return err
	}
	if appt.Status != StatusPending {
		return ErrNotPending
	}
	if err := s.repo.DeletePending(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("appointment cancelled", "appointment_id", id, "client_id", actor.UserID)
	return nil
}

// Transition moves the appointment into to on behalf of the assigned doctor.
// The transition table is consulted before any write is attempted.
func (s *Service) Transition(ctx context.Context, actor identity.Identity, id string, to Status) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.transition")
	defer span.End()
	span.SetAttributes(attribute.String("careloop.to_status", string(to)))

	role, known := RoleFor(to)
	if !known {
		return nil, &TransitionError{To: to}
	}
	if actor.Role != role {
		return nil, ErrNotParticipant
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != actor.UserID {
		return nil, ErrNotParticipant
	}
	if !CanTransition(appt.Status, to) {
		if s.metrics != nil {
			s.metrics.ObserveTransition(string(to), false)
		}
		return nil, &TransitionError{From: appt.Status, To: to}
	}

	if err := s.repo.UpdateStatus(ctx, id, appt.Status, to); err != nil {
		span.RecordError(err)
		if s.metrics != nil {
			s.metrics.ObserveTransition(string(to), false)
		}
		return nil, err
	}
	appt.Status = to
	appt.UpdatedAt = s.now()
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(to), true)
	}
	s.logger.Info("appointment status changed",
		"appointment_id", id, "doctor_id", actor.UserID, "status", to)
	s.publish(ctx, appt, appt.ClientID)
	return appt, nil
}

// Get returns the appointment if the actor participates in it.
func (s *Service) Get(ctx context.Context, actor identity.Identity, id string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.ClientID != actor.UserID && appt.DoctorID != actor.UserID {
		return nil, ErrNotParticipant
	}
	return appt, nil
}

// List returns the actor's appointments for their side of the relationship.
func (s *Service) List(ctx context.Context, actor identity.Identity) ([]*Appointment, error) {
	if actor.Role == identity.RoleDoctor {
		return s.repo.ListByDoctor(ctx, actor.UserID)
	}
	return s.repo.ListByClient(ctx, actor.UserID)
}

func (s *Service) loadForClient(ctx context.Context, actor identity.Identity, id string) (*Appointment, error) {
	if actor.Role != identity.RoleClient {
		return nil, ErrNotParticipant
	}
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.ClientID != actor.UserID {
		return nil, ErrNotParticipant
	}
	return appt, nil
}

// resolveDoctor separates "no such doctor" from directory failures so a store
// outage is not reported back as a booking mistake.
func (s *Service) resolveDoctor(ctx context.Context, id string) (*Doctor, error) {
	doctor, err := s.doctors.GetDoctor(ctx, id)
	if errors.Is(err, ErrUnknownDoctor) {
		return nil, ErrUnknownDoctor
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: resolve doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) publish(ctx context.Context, appt *Appointment, recipientID string) {
	if s.events == nil {
		return
	}
	if err := s.events.AppointmentChanged(ctx, appt, recipientID); err != nil {
		s.logger.Error("failed to publish appointment event",
			"appointment_id", appt.ID, "error", err)
	}
}
