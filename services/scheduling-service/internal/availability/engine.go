package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

// Slot is a fixed-duration candidate booking interval starting at Start.
type Slot struct {
	Start     time.Time
	Available bool
}

// ScheduleRepository is the persistence view the engine needs: the recurring
// weekly windows plus the day's bookings and blackouts.
type ScheduleRepository interface {
	AvailabilityWindows(ctx context.Context, doctorID string, day time.Weekday) ([]model.AvailabilityWindow, error)
	AppointmentsInRange(ctx context.Context, doctorID string, from, to time.Time) ([]model.Appointment, error)
	TimeBlocksInRange(ctx context.Context, doctorID string, from, to time.Time) ([]model.TimeBlock, error)
}

type Engine struct {
	repo ScheduleRepository
}

func NewEngine(repo ScheduleRepository) *Engine {
	return &Engine{repo: repo}
}

// ComputeSlots returns the doctor's bookable slots for the given day, in
// chronological order, each marked available or not. A day with no
// availability windows yields an empty result, not an error.
func (e *Engine) ComputeSlots(ctx context.Context, doctorID string, date time.Time, slotDuration time.Duration) ([]Slot, error) {
	if slotDuration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %s", slotDuration)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	windows, err := e.repo.AvailabilityWindows(ctx, doctorID, date.Weekday())
	if err != nil {
		return nil, fmt.Errorf("load availability windows: %w", err)
	}
	if len(windows) == 0 {
		return nil, nil
	}

	appts, err := e.repo.AppointmentsInRange(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	blocks, err := e.repo.TimeBlocksInRange(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load time blocks: %w", err)
	}

	busy := make([]Interval, 0, len(appts)+len(blocks))
	for _, a := range appts {
		if !a.Status.Occupying() {
			continue
		}
		busy = append(busy, Interval{ID: a.ID, Start: a.Start, End: a.End()})
	}
	for _, b := range blocks {
		busy = append(busy, Interval{ID: b.ID, Start: b.Start, End: b.End})
	}

	return Slots(windows, busy, dayStart, slotDuration), nil
}

// Slots is the pure slot walk: for each active window, candidates are emitted
// every slotDuration starting at the window start; a trailing remainder that
// does not fit the full duration is truncated. Deterministic for fixed inputs.
func Slots(windows []model.AvailabilityWindow, busy []Interval, dayStart time.Time, slotDuration time.Duration) []Slot {
	sorted := make([]model.AvailabilityWindow, 0, len(windows))
	for _, w := range windows {
		if w.Active && w.EndMinute > w.StartMinute {
			sorted = append(sorted, w)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartMinute < sorted[j].StartMinute })

	var slots []Slot
	for _, w := range sorted {
		windowStart := dayStart.Add(time.Duration(w.StartMinute) * time.Minute)
		windowEnd := dayStart.Add(time.Duration(w.EndMinute) * time.Minute)
		for t := windowStart; !t.Add(slotDuration).After(windowEnd); t = t.Add(slotDuration) {
			slots = append(slots, Slot{
				Start:     t,
				Available: !overlapsAny(t, t.Add(slotDuration), busy),
			})
		}
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
