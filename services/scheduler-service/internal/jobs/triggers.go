package jobs

import (
	"fmt"
	"time"
)

// TriggerForOffset names the trigger a lead-time offset corresponds to.
// Offsets outside the well-known set get a distinct custom name so each one
// keeps its own idempotency key.
func TriggerForOffset(offset time.Duration) string {
	switch offset {
	case 24 * time.Hour:
		return "24h"
	case 2 * time.Hour:
		return "2h"
	case time.Hour:
		return "1h"
	case 30 * time.Minute:
		return "30min"
	}
	return fmt.Sprintf("custom-%dm", int(offset.Minutes()))
}

// Appointment carries the event fields the planner needs.
type Appointment struct {
	AppointmentID   string
	DoctorID        string
	DoctorName      string
	Specialty       string
	HighPrivacy     bool
	Reason          string
	PatientID       string
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	Start           time.Time
	DurationMinutes int
	ReminderOffsets []time.Duration
}

// Plan expands an appointment into its reminder jobs: one per lead-time
// offset, a day-of nudge on the appointment morning, and a post-visit
// follow-up. Triggers whose remind time already passed are dropped rather
// than fired late.
func Plan(appt Appointment, now time.Time, postVisitDelay time.Duration) []Job {
	base := Job{
		AppointmentID:   appt.AppointmentID,
		DoctorID:        appt.DoctorID,
		DoctorName:      appt.DoctorName,
		Specialty:       appt.Specialty,
		HighPrivacy:     appt.HighPrivacy,
		Reason:          appt.Reason,
		PatientID:       appt.PatientID,
		PatientName:     appt.PatientName,
		PatientEmail:    appt.PatientEmail,
		PatientPhone:    appt.PatientPhone,
		StartTime:       appt.Start,
		DurationMinutes: appt.DurationMinutes,
	}

	var planned []Job
	for _, offset := range appt.ReminderOffsets {
		if offset <= 0 {
			continue
		}
		remindAt := appt.Start.Add(-offset)
		if !remindAt.After(now) {
			continue
		}
		job := base
		job.Trigger = TriggerForOffset(offset)
		job.IdempotencyKey = Key(appt.AppointmentID, job.Trigger)
		job.RemindAt = remindAt
		planned = append(planned, job)
	}

	// Day-of nudge at 07:00 local on the appointment day, skipped for early
	// appointments where it would land after the lead-time reminders anyway.
	dayOf := time.Date(appt.Start.Year(), appt.Start.Month(), appt.Start.Day(), 7, 0, 0, 0, appt.Start.Location())
	if dayOf.After(now) && dayOf.Before(appt.Start) {
		job := base
		job.Trigger = "day_of"
		job.IdempotencyKey = Key(appt.AppointmentID, job.Trigger)
		job.RemindAt = dayOf
		planned = append(planned, job)
	}

	if postVisitDelay > 0 {
		end := appt.Start.Add(time.Duration(appt.DurationMinutes) * time.Minute)
		job := base
		job.Trigger = "post_appointment"
		job.IdempotencyKey = Key(appt.AppointmentID, job.Trigger)
		job.RemindAt = end.Add(postVisitDelay)
		planned = append(planned, job)
	}

	return planned
}
