package appointments

import (
	"strings"
	"time"
)

// Specializations is the enumerated category list offered on the booking form.
var Specializations = []string{
	"Dentistry",
	"Cardiology",
	"Pulmonology",
	"General",
	"Neurology",
	"Gastroenterology",
	"Laboratory",
	"Vaccination",
}

// KnownSpecialization reports whether s matches a category exactly.
func KnownSpecialization(s string) bool {
	for _, known := range Specializations {
		if s == known {
			return true
		}
	}
	return false
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Appointment is one scheduling request between a client and a doctor.
type Appointment struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"client_id"`
	DoctorID       string    `json:"doctor_id"`
	DoctorName     string    `json:"doctor_name"`
	Specialization string    `json:"specialization"`
	Date           string    `json:"date"` // as submitted, YYYY-MM-DD
	Time           string    `json:"time"` // as submitted, HH:MM
	Description    string    `json:"description"`
	Status         Status    `json:"status"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BookRequest is the booking form payload. The client id comes from the
// authenticated identity, never from the body.
type BookRequest struct {
	ClientID       string `json:"-"`
	DoctorID       string `json:"doctor_id"`
	Specialization string `json:"specialization"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Description    string `json:"description"`
}

// Validate checks the booking form and returns the combined schedule instant.
// Validation failures carry the specific offending field and abort before any
// store call is made.
func (r *BookRequest) Validate(now time.Time) (time.Time, error) {
	if strings.TrimSpace(r.DoctorID) == "" {
		return time.Time{}, ErrMissingDoctor
	}
	if !KnownSpecialization(strings.TrimSpace(r.Specialization)) {
		return time.Time{}, ErrUnknownSpecialization
	}
	if strings.TrimSpace(r.Description) == "" {
		return time.Time{}, ErrMissingDescription
	}
	scheduledFor, err := combineSchedule(r.Date, r.Time, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	if scheduledFor.Before(now) {
		return time.Time{}, ErrPastSchedule
	}
	return scheduledFor, nil
}

func combineSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, ErrInvalidSchedule
	}
	t, err := time.Parse(timeLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, ErrInvalidSchedule
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
