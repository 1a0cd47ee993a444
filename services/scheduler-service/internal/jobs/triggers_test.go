package jobs

import (
	"testing"
	"time"
)

func TestTriggerForOffset(t *testing.T) {
	cases := []struct {
		offset time.Duration
		want   string
	}{
		{24 * time.Hour, "24h"},
		{2 * time.Hour, "2h"},
		{time.Hour, "1h"},
		{30 * time.Minute, "30min"},
		{45 * time.Minute, "custom-45m"},
		{3 * 24 * time.Hour, "custom-4320m"},
	}
	for _, tc := range cases {
		if got := TriggerForOffset(tc.offset); got != tc.want {
			t.Fatalf("TriggerForOffset(%s) = %s, want %s", tc.offset, got, tc.want)
		}
	}
}

func TestPlanExpandsOffsetsAndPostVisit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	appt := Appointment{
		AppointmentID:   "appt-1",
		DoctorID:        "doc-1",
		PatientName:     "Ana",
		Start:           time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		DurationMinutes: 30,
		ReminderOffsets: []time.Duration{24 * time.Hour, 2 * time.Hour},
	}

	planned := Plan(appt, now, 3*time.Hour)

	if len(planned) != 4 {
		t.Fatalf("planned %d jobs, want 4", len(planned))
	}
	if planned[0].Trigger != "24h" || !planned[0].RemindAt.Equal(appt.Start.Add(-24*time.Hour)) {
		t.Fatalf("unexpected first job: %+v", planned[0])
	}
	if planned[1].Trigger != "2h" {
		t.Fatalf("unexpected second job: %+v", planned[1])
	}
	dayOf := planned[2]
	if dayOf.Trigger != "day_of" {
		t.Fatalf("unexpected third job: %+v", dayOf)
	}
	wantDayOf := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
	if !dayOf.RemindAt.Equal(wantDayOf) {
		t.Fatalf("day-of remind at %s, want %s", dayOf.RemindAt, wantDayOf)
	}
	post := planned[3]
	if post.Trigger != "post_appointment" {
		t.Fatalf("unexpected fourth job: %+v", post)
	}
	wantPost := appt.Start.Add(30 * time.Minute).Add(3 * time.Hour)
	if !post.RemindAt.Equal(wantPost) {
		t.Fatalf("post-visit remind at %s, want %s", post.RemindAt, wantPost)
	}
	for _, job := range planned {
		if job.IdempotencyKey != Key(appt.AppointmentID, job.Trigger) {
			t.Fatalf("bad idempotency key: %+v", job)
		}
	}
}

func TestPlanDropsPastTriggers(t *testing.T) {
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	appt := Appointment{
		AppointmentID:   "appt-2",
		Start:           time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		DurationMinutes: 30,
		ReminderOffsets: []time.Duration{24 * time.Hour, time.Hour},
	}

	planned := Plan(appt, now, 0)

	if len(planned) != 1 {
		t.Fatalf("planned %d jobs, want 1 (24h lead already passed)", len(planned))
	}
	if planned[0].Trigger != "1h" {
		t.Fatalf("surviving trigger = %s, want 1h", planned[0].Trigger)
	}
}

func TestPlanIgnoresNonPositiveOffsets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	appt := Appointment{
		AppointmentID:   "appt-3",
		Start:           time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ReminderOffsets: []time.Duration{0, -time.Hour},
	}

	planned := Plan(appt, now, 0)
	if len(planned) != 1 || planned[0].Trigger != "day_of" {
		t.Fatalf("planned %+v, want only the day-of job", planned)
	}
}
