package availability

import (
	"context"
	"testing"
	"time"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

type fakeScheduleRepo struct {
	windows []model.AvailabilityWindow
	appts   []model.Appointment
	blocks  []model.TimeBlock
}

func (f *fakeScheduleRepo) AvailabilityWindows(_ context.Context, _ string, day time.Weekday) ([]model.AvailabilityWindow, error) {
	var out []model.AvailabilityWindow
	for _, w := range f.windows {
		if w.DayOfWeek == day {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) AppointmentsInRange(_ context.Context, _ string, _, _ time.Time) ([]model.Appointment, error) {
	return f.appts, nil
}

func (f *fakeScheduleRepo) TimeBlocksInRange(_ context.Context, _ string, _, _ time.Time) ([]model.TimeBlock, error) {
	return f.blocks, nil
}

// Wednesday.
var testDay = time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)

func window(start, end int) model.AvailabilityWindow {
	return model.AvailabilityWindow{
		DoctorID:    "doc-1",
		DayOfWeek:   testDay.Weekday(),
		StartMinute: start,
		EndMinute:   end,
		Active:      true,
	}
}

func TestComputeSlots_BookingMarksSlotUnavailable(t *testing.T) {
	repo := &fakeScheduleRepo{
		windows: []model.AvailabilityWindow{window(9*60, 11*60)},
		appts: []model.Appointment{{
			ID:              "appt-1",
			DoctorID:        "doc-1",
			Start:           testDay.Add(9*time.Hour + 30*time.Minute),
			DurationMinutes: 30,
			Status:          model.StatusConfirmed,
		}},
	}
	engine := NewEngine(repo)

	slots, err := engine.ComputeSlots(context.Background(), "doc-1", testDay, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	want := []struct {
		start     time.Duration
		available bool
	}{
		{9 * time.Hour, true},
		{9*time.Hour + 30*time.Minute, false},
		{10 * time.Hour, true},
		{10*time.Hour + 30*time.Minute, true},
	}
	for i, w := range want {
		if !slots[i].Start.Equal(testDay.Add(w.start)) {
			t.Fatalf("slot %d: expected start %s, got %s", i, testDay.Add(w.start), slots[i].Start)
		}
		if slots[i].Available != w.available {
			t.Fatalf("slot %d (%s): expected available=%v", i, slots[i].Start, w.available)
		}
	}
}

func TestComputeSlots_NoWindowsMeansEmpty(t *testing.T) {
	engine := NewEngine(&fakeScheduleRepo{})
	slots, err := engine.ComputeSlots(context.Background(), "doc-1", testDay, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestComputeSlots_TruncatesTrailingPartialSlot(t *testing.T) {
	// 09:00-10:15 with 30-minute slots: 09:00, 09:30; 10:00 would spill over.
	engine := NewEngine(&fakeScheduleRepo{
		windows: []model.AvailabilityWindow{window(9*60, 10*60+15)},
	})
	slots, err := engine.ComputeSlots(context.Background(), "doc-1", testDay, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[1].Start.Equal(testDay.Add(9*time.Hour + 30*time.Minute)) {
		t.Fatalf("expected last slot 09:30, got %s", slots[1].Start)
	}
}

func TestComputeSlots_TimeBlockCarvesOutWindow(t *testing.T) {
	engine := NewEngine(&fakeScheduleRepo{
		windows: []model.AvailabilityWindow{window(9*60, 11*60)},
		blocks: []model.TimeBlock{{
			ID:       "block-1",
			DoctorID: "doc-1",
			Start:    testDay.Add(10 * time.Hour),
			End:      testDay.Add(11 * time.Hour),
		}},
	})
	slots, err := engine.ComputeSlots(context.Background(), "doc-1", testDay, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	for _, s := range slots {
		blocked := !s.Start.Before(testDay.Add(10 * time.Hour))
		if s.Available == blocked {
			t.Fatalf("slot %s: expected available=%v", s.Start, !blocked)
		}
	}
}

func TestComputeSlots_CancelledAppointmentFreesSlot(t *testing.T) {
	engine := NewEngine(&fakeScheduleRepo{
		windows: []model.AvailabilityWindow{window(9*60, 10*60)},
		appts: []model.Appointment{{
			ID:              "appt-1",
			Start:           testDay.Add(9 * time.Hour),
			DurationMinutes: 30,
			Status:          model.StatusCancelled,
		}},
	})
	slots, err := engine.ComputeSlots(context.Background(), "doc-1", testDay, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if !slots[0].Available {
		t.Fatalf("cancelled appointment should not occupy its slot")
	}
}

func TestComputeSlots_Deterministic(t *testing.T) {
	repo := &fakeScheduleRepo{
		windows: []model.AvailabilityWindow{window(14*60, 16*60), window(9*60, 11*60)},
		appts: []model.Appointment{{
			ID:              "appt-1",
			Start:           testDay.Add(14 * time.Hour),
			DurationMinutes: 20,
			Status:          model.StatusPending,
		}},
	}
	engine := NewEngine(repo)

	first, err := engine.ComputeSlots(context.Background(), "doc-1", testDay, 20*time.Minute)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	second, err := engine.ComputeSlots(context.Background(), "doc-1", testDay, 20*time.Minute)
	if err != nil {
		t.Fatalf("ComputeSlots failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) || first[i].Available != second[i].Available {
			t.Fatalf("slot %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
	// Morning window must come first regardless of input order.
	if !first[0].Start.Equal(testDay.Add(9 * time.Hour)) {
		t.Fatalf("expected chronological order, first slot %s", first[0].Start)
	}
}
