package model

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Occupying reports whether an appointment in this status holds its slot on
// the doctor's calendar. Cancelled and no-show appointments free the interval.
func (s AppointmentStatus) Occupying() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID              string
	DoctorID        string
	DoctorName      string // denormalized so notifications need no directory lookup
	PatientID       string // empty for walk-in patients with no account
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	LocationID      string // empty for single-site clinics
	Specialty       string
	Reason          string
	Start           time.Time
	DurationMinutes int
	Status          AppointmentStatus
	IdempotencyKey  string // client-supplied dedupe key, empty when absent
	CancelReason    string
	CancelledAt     *time.Time
	CreatedAt       time.Time
}

// End is the exclusive end of the appointment interval [Start, End).
func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}
