package reminder

import (
	"testing"
	"time"
)

func TestStatusCanBecome(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusProcessing, StatusSent, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusConfirmedByPatient, true},
		{StatusProcessing, StatusCancelledByPatient, true},
		{StatusSent, StatusConfirmedByPatient, true},
		{StatusSent, StatusCancelledByPatient, true},

		// Dispatch outcomes never overwrite a recorded response.
		{StatusConfirmedByPatient, StatusSent, false},
		{StatusConfirmedByPatient, StatusFailed, false},
		{StatusCancelledByPatient, StatusSent, false},

		// A row that failed every channel never delivered its link.
		{StatusFailed, StatusConfirmedByPatient, false},
		{StatusFailed, StatusCancelledByPatient, false},

		{StatusSent, StatusProcessing, false},
		{StatusSent, StatusFailed, false},
	}
	for _, c := range cases {
		if got := c.from.CanBecome(c.to); got != c.want {
			t.Errorf("CanBecome(%s -> %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTokenExpiry(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	offered := time.Date(2026, 3, 12, 16, 30, 0, 0, time.UTC)

	rem := Reminder{Kind: KindReminder, StartTime: start}
	if got := rem.TokenExpiry(); !got.Equal(start) {
		t.Fatalf("reminder link expiry = %v, want appointment start %v", got, start)
	}

	rem = Reminder{Kind: KindWaitlistOffer, StartTime: start, OfferedStart: &offered}
	if got := rem.TokenExpiry(); !got.Equal(offered) {
		t.Fatalf("offer link expiry = %v, want offered slot %v", got, offered)
	}

	rem = Reminder{Kind: KindPostVisit, StartTime: start}
	if got, want := rem.TokenExpiry(), start.Add(30*24*time.Hour); !got.Equal(want) {
		t.Fatalf("post-visit link expiry = %v, want %v", got, want)
	}
}
