package model

import (
	"fmt"
	"time"
)

// AvailabilityWindow is one recurring bookable stretch of a doctor's week,
// expressed as minutes from midnight in the clinic's timezone.
type AvailabilityWindow struct {
	DoctorID    string
	DayOfWeek   time.Weekday
	StartMinute int
	EndMinute   int
	Active      bool
}

// TimeBlock is an explicit blackout interval (vacation, meeting) that removes
// bookable time regardless of appointment occupancy.
type TimeBlock struct {
	ID       string
	DoctorID string
	Start    time.Time
	End      time.Time
	Reason   string
}

// ParseClock parses "HH:MM" into minutes from midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}

// ClockString renders minutes from midnight as "HH:MM".
func ClockString(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// MinuteOfDay returns how far into its own day t is, in minutes.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
