package directory

import (
	"context"
	"testing"
	"time"
)

func TestStaticProviderNormalizesSpecialties(t *testing.T) {
	p := NewStaticProvider(
		[]time.Duration{24 * time.Hour},
		[]string{" Psychiatry ", "fertility", ""},
	)

	ctx := context.Background()
	for _, specialty := range []string{"psychiatry", "PSYCHIATRY", " Fertility"} {
		hp, err := p.HighPrivacy(ctx, specialty)
		if err != nil {
			t.Fatalf("HighPrivacy(%q): %v", specialty, err)
		}
		if !hp {
			t.Fatalf("HighPrivacy(%q) = false, want true", specialty)
		}
	}

	hp, err := p.HighPrivacy(ctx, "cardiology")
	if err != nil {
		t.Fatalf("HighPrivacy(cardiology): %v", err)
	}
	if hp {
		t.Fatalf("HighPrivacy(cardiology) = true, want false")
	}
}

func TestStaticProviderOffsets(t *testing.T) {
	offsets := []time.Duration{24 * time.Hour, 2 * time.Hour}
	p := NewStaticProvider(offsets, nil)

	got, err := p.ReminderOffsets(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ReminderOffsets: %v", err)
	}
	if len(got) != 2 || got[0] != 24*time.Hour || got[1] != 2*time.Hour {
		t.Fatalf("ReminderOffsets = %v, want %v", got, offsets)
	}
}
