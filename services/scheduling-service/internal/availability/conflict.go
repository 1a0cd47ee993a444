package availability

import "time"

// Interval is a half-open [Start, End) occupancy on a doctor's calendar.
type Interval struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Overlaps implements the half-open interval test: touching endpoints do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Conflict is the advisory result of a pre-booking check. The authoritative
// check is the exclusion constraint enforced at write time; this one exists
// so callers can surface a useful answer before attempting the write.
type Conflict struct {
	Conflict      bool
	ConflictingID string
}

// CheckConflict reports whether candidate overlaps any of the existing
// intervals, returning the first conflicting id in chronological scan order.
func CheckConflict(candidate Interval, existing []Interval) Conflict {
	for _, iv := range existing {
		if iv.ID != "" && iv.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate.Start, candidate.End, iv.Start, iv.End) {
			return Conflict{Conflict: true, ConflictingID: iv.ID}
		}
	}
	return Conflict{}
}

// Classification describes what a drag-and-drop move onto a candidate slot
// would do.
type Classification int

const (
	// ClassFree means the candidate slot is open and the move can proceed.
	ClassFree Classification = iota
	// ClassBlocked means the candidate slot is occupied and no exchange is
	// possible.
	ClassBlocked
	// ClassSwap means exactly one appointment occupies the candidate slot and
	// the two can exchange intervals.
	ClassSwap
)

func (c Classification) String() string {
	switch c {
	case ClassFree:
		return "free"
	case ClassBlocked:
		return "blocked"
	case ClassSwap:
		return "swap"
	}
	return "unknown"
}

// DragState identifies the appointment being moved and the interval it is
// leaving behind.
type DragState struct {
	AppointmentID string
	OriginalStart time.Time
	OriginalEnd   time.Time
}

// Classify decides whether dropping the dragged appointment onto candidate is
// free, blocked, or a two-way swap with the single occupant. A swap requires
// a future candidate slot and equal durations, so the occupant fits into the
// interval the drag frees up. The second return value is the occupant's id
// for blocked and swap results.
func Classify(candidate Interval, drag DragState, existing []Interval, now time.Time) (Classification, string) {
	var occupants []Interval
	for _, iv := range existing {
		if iv.ID == drag.AppointmentID {
			continue
		}
		if Overlaps(candidate.Start, candidate.End, iv.Start, iv.End) {
			occupants = append(occupants, iv)
		}
	}
	if len(occupants) == 0 {
		return ClassFree, ""
	}
	if len(occupants) > 1 {
		return ClassBlocked, occupants[0].ID
	}

	occ := occupants[0]
	if candidate.Start.Before(now) {
		return ClassBlocked, occ.ID
	}
	candDur := candidate.End.Sub(candidate.Start)
	occDur := occ.End.Sub(occ.Start)
	origDur := drag.OriginalEnd.Sub(drag.OriginalStart)
	if occDur != origDur || candDur != occDur {
		return ClassBlocked, occ.ID
	}
	return ClassSwap, occ.ID
}
