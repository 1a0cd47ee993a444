package waitlist

import (
	"testing"
	"time"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

// Friday 10:00.
var freedStart = time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)

func entry(id string, prio model.Priority, durationMins int, days []time.Weekday, createdOffset time.Duration) model.WaitlistEntry {
	return model.WaitlistEntry{
		ID:                       id,
		DoctorID:                 "doc-1",
		EstimatedDurationMinutes: durationMins,
		PreferredDays:            days,
		Priority:                 prio,
		Status:                   model.WaitlistWaiting,
		CreatedAt:                time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(createdOffset),
	}
}

func TestMatch_FilterAndPriorityOrder(t *testing.T) {
	freed := FreedSlot{Day: time.Friday, Start: freedStart, DurationMinutes: 60}
	candidates := []model.WaitlistEntry{
		entry("urgent-any", model.PriorityUrgent, 45, nil, 0),
		entry("normal-monwed", model.PriorityNormal, 60, []time.Weekday{time.Monday, time.Wednesday}, time.Hour),
		entry("high-fri", model.PriorityHigh, 30, []time.Weekday{time.Friday}, 2*time.Hour),
	}

	got := Match(freed, candidates)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != "urgent-any" || got[1].ID != "high-fri" {
		t.Fatalf("expected [urgent-any high-fri], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestMatch_DurationTooLongExcluded(t *testing.T) {
	freed := FreedSlot{Day: time.Friday, Start: freedStart, DurationMinutes: 30}
	got := Match(freed, []model.WaitlistEntry{entry("long", model.PriorityUrgent, 45, nil, 0)})
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestMatch_OnlyWaitingEntries(t *testing.T) {
	freed := FreedSlot{Day: time.Friday, Start: freedStart, DurationMinutes: 60}
	notified := entry("notified", model.PriorityUrgent, 30, nil, 0)
	notified.Status = model.WaitlistNotified
	got := Match(freed, []model.WaitlistEntry{notified})
	if len(got) != 0 {
		t.Fatalf("already-notified entries must not match")
	}
}

func TestMatch_TimeOfDayPreferences(t *testing.T) {
	freed := FreedSlot{Day: time.Friday, Start: freedStart, DurationMinutes: 30}

	early := 8 * 60
	lateStart := 14 * 60
	okStart := 9 * 60
	okEnd := 12 * 60

	morningOnly := entry("morning", model.PriorityNormal, 30, nil, 0)
	morningOnly.PreferredTimeStart = &okStart
	morningOnly.PreferredTimeEnd = &okEnd

	tooEarlyCutoff := entry("early-cutoff", model.PriorityNormal, 30, nil, 0)
	tooEarlyCutoff.PreferredTimeEnd = &early

	afternoonOnly := entry("afternoon", model.PriorityNormal, 30, nil, 0)
	afternoonOnly.PreferredTimeStart = &lateStart

	got := Match(freed, []model.WaitlistEntry{morningOnly, tooEarlyCutoff, afternoonOnly})
	if len(got) != 1 || got[0].ID != "morning" {
		t.Fatalf("expected only the 09:00-12:00 preference to match, got %d matches", len(got))
	}
}

func TestMatch_TiesBrokenByCreationTime(t *testing.T) {
	freed := FreedSlot{Day: time.Friday, Start: freedStart, DurationMinutes: 60}
	// Deliberately out of creation order in the input.
	candidates := []model.WaitlistEntry{
		entry("second", model.PriorityHigh, 30, nil, 2*time.Hour),
		entry("first", model.PriorityHigh, 30, nil, time.Hour),
	}
	got := Match(freed, candidates)
	if len(got) != 2 || got[0].ID != "first" || got[1].ID != "second" {
		t.Fatalf("expected first-come-first-served within a priority, got %+v", got)
	}
}
