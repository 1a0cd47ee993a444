package token

import (
	"strings"
	"testing"
)

func TestNew_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := New()
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %s", tok)
		}
		seen[tok] = true
		if !WellFormed(tok) {
			t.Fatalf("generated token not well-formed: %s", tok)
		}
	}
}

func TestWellFormed_Rejects(t *testing.T) {
	for _, s := range []string{"", "short", strings.Repeat("!", 43), strings.Repeat("a", 44)} {
		if WellFormed(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestBuildLinks(t *testing.T) {
	links := BuildLinks("https://citas.example.com/", "abc")
	if links.Confirm != "https://citas.example.com/cita/confirmar/abc" {
		t.Fatalf("unexpected confirm link: %s", links.Confirm)
	}
	if links.Cancel != "https://citas.example.com/cita/cancelar/abc" {
		t.Fatalf("unexpected cancel link: %s", links.Cancel)
	}
	if links.Reschedule != "https://citas.example.com/cita/reprogramar/abc" {
		t.Fatalf("unexpected reschedule link: %s", links.Reschedule)
	}
}
