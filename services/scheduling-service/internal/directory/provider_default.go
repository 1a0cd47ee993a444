//go:build !protogen

package directory

import (
	"log/slog"
	"time"
)

func NewDirectoryProvider(_ *slog.Logger, offsets []time.Duration, highPrivacySpecialties []string, _ string) (Provider, error) {
	return NewStaticProvider(offsets, highPrivacySpecialties), nil
}
