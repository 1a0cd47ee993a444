package waitlist

import (
	"sort"
	"time"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

// FreedSlot describes an interval that just opened up on a doctor's calendar,
// typically through a cancellation.
type FreedSlot struct {
	Day             time.Weekday
	Start           time.Time
	DurationMinutes int
}

// Match filters the candidate entries down to those compatible with the freed
// slot and orders them by priority (urgent first), ties broken by creation
// time ascending. The result is advisory: no entry is mutated here; the
// caller picks how many to notify and transitions those to notified.
func Match(freed FreedSlot, candidates []model.WaitlistEntry) []model.WaitlistEntry {
	minute := model.MinuteOfDay(freed.Start)

	var matched []model.WaitlistEntry
	for _, e := range candidates {
		if e.Status != model.WaitlistWaiting {
			continue
		}
		if e.EstimatedDurationMinutes > freed.DurationMinutes {
			continue
		}
		if !e.PrefersDay(freed.Day) {
			continue
		}
		if e.PreferredTimeStart != nil && minute < *e.PreferredTimeStart {
			continue
		}
		if e.PreferredTimeEnd != nil && minute > *e.PreferredTimeEnd {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := matched[i].Priority.Rank(), matched[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched
}
