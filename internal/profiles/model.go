// Package profiles stores user accounts and role-specific profile data.
package profiles

import (
	"strings"
	"time"

	"github.com/careloop/clinic-platform/internal/identity"
)

// Schedule is a doctor's weekly availability window, kept as free text the
// way the booking screens display it.
type Schedule struct {
	Weekday string `json:"weekday,omitempty"` // e.g. "09:00 - 17:00"
	Weekend string `json:"weekend,omitempty"` // e.g. "10:00 - 14:00"
}

// Profile is a user account plus the role-specific fields shown on the
// profile screen. Client and doctor fields are sparse depending on Role.
type Profile struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Role      identity.Role `json:"role"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Phone     string        `json:"phone"`

	// Client fields. Free text as entered on the form.
	Age            string `json:"age,omitempty"`
	BloodType      string `json:"blood_type,omitempty"`
	Weight         string `json:"weight,omitempty"`
	Height         string `json:"height,omitempty"`
	Allergies      string `json:"allergies,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`

	// Doctor fields.
	Specialization string   `json:"specialization,omitempty"`
	Hospital       string   `json:"hospital,omitempty"`
	Experience     string   `json:"experience,omitempty"`
	Schedule       Schedule `json:"schedule,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the name shown in directories and chat headers.
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// UpdateRequest carries the editable profile fields. Empty strings mean
// "leave unchanged": the form submits only what the user typed, and the
// service overlays it onto the stored profile.
type UpdateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`

	Age            string `json:"age"`
	BloodType      string `json:"blood_type"`
	Weight         string `json:"weight"`
	Height         string `json:"height"`
	Allergies      string `json:"allergies"`
	MedicalHistory string `json:"medical_history"`

	Specialization  string `json:"specialization"`
	Hospital        string `json:"hospital"`
	Experience      string `json:"experience"`
	ScheduleWeekday string `json:"schedule_weekday"`
	ScheduleWeekend string `json:"schedule_weekend"`
}

// applyTo overlays the non-empty request fields onto p.
func (r *UpdateRequest) applyTo(p *Profile) {
	overlay(&p.FirstName, r.FirstName)
	overlay(&p.LastName, r.LastName)
	overlay(&p.Phone, r.Phone)
	overlay(&p.Age, r.Age)
	overlay(&p.BloodType, r.BloodType)
	overlay(&p.Weight, r.Weight)
	overlay(&p.Height, r.Height)
	overlay(&p.Allergies, r.Allergies)
	overlay(&p.MedicalHistory, r.MedicalHistory)
	overlay(&p.Specialization, r.Specialization)
	overlay(&p.Hospital, r.Hospital)
	overlay(&p.Experience, r.Experience)
	overlay(&p.Schedule.Weekday, r.ScheduleWeekday)
	overlay(&p.Schedule.Weekend, r.ScheduleWeekend)
}

func overlay(dst *string, src string) {
	if s := strings.TrimSpace(src); s != "" {
		*dst = s
	}
}
