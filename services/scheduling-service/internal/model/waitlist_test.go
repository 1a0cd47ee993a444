package model

import (
	"testing"
	"time"
)

func TestOfferLapsed(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	cases := []struct {
		name  string
		entry WaitlistEntry
		want  bool
	}{
		{"notified with passed slot", WaitlistEntry{Status: WaitlistNotified, OfferedStart: &past}, true},
		{"notified with future slot", WaitlistEntry{Status: WaitlistNotified, OfferedStart: &future}, false},
		{"notified without recorded slot", WaitlistEntry{Status: WaitlistNotified}, false},
		{"waiting entry never lapses", WaitlistEntry{Status: WaitlistWaiting, OfferedStart: &past}, false},
		{"confirmed entry never lapses", WaitlistEntry{Status: WaitlistConfirmed, OfferedStart: &past}, false},
	}
	for _, c := range cases {
		if got := c.entry.OfferLapsed(now); got != c.want {
			t.Errorf("%s: OfferLapsed = %v, want %v", c.name, got, c.want)
		}
	}
}
