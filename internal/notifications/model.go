// Package notifications stores per-user notifications and delivers them by
// email through a background dispatcher fed from a queue.
package notifications

import (
	"fmt"
	"time"

	"github.com/careloop/clinic-platform/internal/appointments"
)

// Notification is one entry in a user's notification feed.
type Notification struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// Event is the queue payload produced when an appointment changes.
type Event struct {
	ID            string `json:"id"`
	RecipientID   string `json:"recipient_id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	AppointmentID string `json:"appointment_id"`
}

// eventForAppointment renders the user-facing wording for a status change.
func eventForAppointment(appt *appointments.Appointment, recipientID string) Event {
	var title, body string
	switch appt.Status {
	case appointments.StatusPending:
		title = "New appointment request"
		body = fmt.Sprintf("You have a new %s appointment request for %s at %s.",
			appt.Specialization, appt.Date, appt.Time)
	case appointments.StatusApproved:
		title = "Appointment approved"
		body = fmt.Sprintf("Your appointment with %s on %s at %s was approved.",
			appt.DoctorName, appt.Date, appt.Time)
	case appointments.StatusRejected:
		title = "Appointment rejected"
		body = fmt.Sprintf("Your appointment request with %s on %s was rejected.",
			appt.DoctorName, appt.Date)
	case appointments.StatusCompleted:
		title = "Appointment completed"
		body = fmt.Sprintf("Your appointment with %s on %s was marked completed.",
			appt.DoctorName, appt.Date)
	default:
		title = "Appointment update"
		body = fmt.Sprintf("Your appointment on %s at %s was updated.", appt.Date, appt.Time)
	}
	return Event{
		RecipientID:   recipientID,
		Title:         title,
		Body:          body,
		AppointmentID: appt.ID,
	}
}
