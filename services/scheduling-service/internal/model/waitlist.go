package model

import "time"

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Rank orders priorities, urgent first. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

func (p Priority) Valid() bool {
	return p.Rank() < 4
}

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistConfirmed WaitlistStatus = "confirmed"
	WaitlistExpired   WaitlistStatus = "expired"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

type WaitlistEntry struct {
	ID                       string
	DoctorID                 string
	PatientID                string
	PatientName              string
	PatientEmail             string
	PatientPhone             string
	EstimatedDurationMinutes int
	PreferredDays            []time.Weekday // empty means any day
	PreferredTimeStart       *int           // minute of day, nil means any
	PreferredTimeEnd         *int
	Priority                 Priority
	Status                   WaitlistStatus
	OfferedStart             *time.Time // slot most recently offered, set on notify
	CreatedAt                time.Time
}

// OfferLapsed reports whether the entry holds an offer whose slot start has
// already passed. Lapsed offers expire instead of booking into the past.
func (e WaitlistEntry) OfferLapsed(now time.Time) bool {
	return e.Status == WaitlistNotified && e.OfferedStart != nil && now.After(*e.OfferedStart)
}

// PrefersDay reports whether the entry accepts the given weekday.
func (e WaitlistEntry) PrefersDay(d time.Weekday) bool {
	if len(e.PreferredDays) == 0 {
		return true
	}
	for _, pd := range e.PreferredDays {
		if pd == d {
			return true
		}
	}
	return false
}
