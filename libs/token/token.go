package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// Reschedule tokens are opaque, unguessable credentials embedded in the
// confirm/cancel/reschedule links sent to patients. They carry no claims;
// the notification store is the source of truth for what a token maps to
// and when it expires.

const rawLen = 32

// New returns a url-safe random token (256 bits of entropy).
func New() (string, error) {
	var b [rawLen]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// WellFormed reports whether s looks like a token produced by New. It lets
// HTTP handlers reject garbage paths before touching the database.
func WellFormed(s string) bool {
	if len(s) != base64.RawURLEncoding.EncodedLen(rawLen) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}

// Links are the patient-facing self-service URLs for one reminder.
type Links struct {
	Confirm    string
	Cancel     string
	Reschedule string
}

// BuildLinks renders the public /cita/... link set for a token.
func BuildLinks(baseURL, tok string) Links {
	base := strings.TrimRight(baseURL, "/")
	return Links{
		Confirm:    base + "/cita/confirmar/" + tok,
		Cancel:     base + "/cita/cancelar/" + tok,
		Reschedule: base + "/cita/reprogramar/" + tok,
	}
}
