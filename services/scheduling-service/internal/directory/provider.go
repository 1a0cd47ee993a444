package directory

import (
	"context"
	"strings"
	"time"
)

// Provider answers the two directory questions scheduling needs: when a
// doctor's patients should be reminded, and whether a specialty is classified
// high-privacy (in which case outbound messages must not carry the visit
// reason).
type Provider interface {
	ReminderOffsets(ctx context.Context, doctorID string) ([]time.Duration, error)
	HighPrivacy(ctx context.Context, specialty string) (bool, error)
}

type staticProvider struct {
	offsets     []time.Duration
	highPrivacy map[string]bool
}

// NewStaticProvider serves fixed offsets and a fixed high-privacy specialty
// set. It is the fallback when the directory service is unreachable and the
// default in deployments without the gRPC directory surface.
func NewStaticProvider(offsets []time.Duration, highPrivacySpecialties []string) Provider {
	set := make(map[string]bool, len(highPrivacySpecialties))
	for _, s := range highPrivacySpecialties {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = true
		}
	}
	return &staticProvider{offsets: offsets, highPrivacy: set}
}

func (p *staticProvider) ReminderOffsets(_ context.Context, _ string) ([]time.Duration, error) {
	return p.offsets, nil
}

func (p *staticProvider) HighPrivacy(_ context.Context, specialty string) (bool, error) {
	return p.highPrivacy[strings.ToLower(strings.TrimSpace(specialty))], nil
}
