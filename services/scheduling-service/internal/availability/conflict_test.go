package availability

import (
	"testing"
	"time"
)

var base = time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

func iv(id string, startMins, endMins int) Interval {
	return Interval{
		ID:    id,
		Start: base.Add(time.Duration(startMins) * time.Minute),
		End:   base.Add(time.Duration(endMins) * time.Minute),
	}
}

func TestCheckConflict_TouchingEndpointsDoNotOverlap(t *testing.T) {
	existing := []Interval{iv("a", 0, 30)}
	res := CheckConflict(iv("", 30, 60), existing)
	if res.Conflict {
		t.Fatalf("slots touching at 09:30 must not conflict")
	}
}

func TestCheckConflict_ReportsConflictingID(t *testing.T) {
	existing := []Interval{iv("a", 0, 30), iv("b", 30, 60)}
	res := CheckConflict(iv("", 45, 75), existing)
	if !res.Conflict {
		t.Fatalf("expected conflict")
	}
	if res.ConflictingID != "b" {
		t.Fatalf("expected conflicting id b, got %q", res.ConflictingID)
	}
}

func TestCheckConflict_IgnoresSelf(t *testing.T) {
	existing := []Interval{iv("a", 0, 30)}
	res := CheckConflict(iv("a", 15, 45), existing)
	if res.Conflict {
		t.Fatalf("an appointment must not conflict with itself")
	}
}

func TestClassify_FreeSlot(t *testing.T) {
	drag := DragState{AppointmentID: "a", OriginalStart: base, OriginalEnd: base.Add(30 * time.Minute)}
	class, _ := Classify(iv("", 60, 90), drag, []Interval{iv("a", 0, 30)}, base.Add(-time.Hour))
	if class != ClassFree {
		t.Fatalf("expected free, got %s", class)
	}
}

func TestClassify_SwapWithSingleEqualDurationOccupant(t *testing.T) {
	drag := DragState{AppointmentID: "a", OriginalStart: base, OriginalEnd: base.Add(30 * time.Minute)}
	existing := []Interval{iv("a", 0, 30), iv("b", 60, 90)}
	class, occID := Classify(iv("", 60, 90), drag, existing, base.Add(-time.Hour))
	if class != ClassSwap {
		t.Fatalf("expected swap, got %s", class)
	}
	if occID != "b" {
		t.Fatalf("expected swap partner b, got %q", occID)
	}
}

func TestClassify_BlockedWhenCandidateInPast(t *testing.T) {
	drag := DragState{AppointmentID: "a", OriginalStart: base, OriginalEnd: base.Add(30 * time.Minute)}
	existing := []Interval{iv("a", 0, 30), iv("b", 60, 90)}
	now := base.Add(2 * time.Hour)
	class, _ := Classify(iv("", 60, 90), drag, existing, now)
	if class != ClassBlocked {
		t.Fatalf("expected blocked for past slot, got %s", class)
	}
}

func TestClassify_BlockedOnDurationMismatch(t *testing.T) {
	drag := DragState{AppointmentID: "a", OriginalStart: base, OriginalEnd: base.Add(45 * time.Minute)}
	existing := []Interval{iv("a", 0, 45), iv("b", 60, 90)}
	class, _ := Classify(iv("", 60, 105), drag, existing, base.Add(-time.Hour))
	if class != ClassBlocked {
		t.Fatalf("expected blocked when durations differ, got %s", class)
	}
}

func TestClassify_BlockedByMultipleOccupants(t *testing.T) {
	drag := DragState{AppointmentID: "a", OriginalStart: base, OriginalEnd: base.Add(60 * time.Minute)}
	existing := []Interval{iv("a", 0, 60), iv("b", 90, 120), iv("c", 120, 150)}
	class, _ := Classify(iv("", 90, 150), drag, existing, base.Add(-time.Hour))
	if class != ClassBlocked {
		t.Fatalf("expected blocked with two occupants, got %s", class)
	}
}
