package cascade

import (
	"strings"
	"testing"
	"time"

	"github.com/citaplan/citaplan/libs/token"
	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
)

func testLinks() token.Links {
	return token.BuildLinks("https://clinic.example", "tok123")
}

func baseReminder(kind reminder.Kind) reminder.Reminder {
	return reminder.Reminder{
		Kind:        kind,
		PatientName: "Luis Pérez",
		DoctorName:  "Dra. Marta Ruiz",
		Specialty:   "cardiología",
		Reason:      "revisión anual",
		StartTime:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestRenderReminderIncludesLinksAndSpecialty(t *testing.T) {
	msg := Render(baseReminder(reminder.KindReminder), testLinks())

	if !strings.Contains(msg.Body, "cardiología") {
		t.Fatalf("body should name the specialty: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Dra. Marta Ruiz") {
		t.Fatalf("body should name the doctor: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "14/03/2026 a las 09:30") {
		t.Fatalf("body should carry the appointment time: %q", msg.Body)
	}
	for _, link := range []string{"/cita/confirmar/tok123", "/cita/cancelar/tok123", "/cita/reprogramar/tok123"} {
		if !strings.Contains(msg.Body, link) {
			t.Fatalf("body is missing link %s: %q", link, msg.Body)
		}
	}
}

func TestRenderHighPrivacySuppressesDetails(t *testing.T) {
	rem := baseReminder(reminder.KindReminder)
	rem.HighPrivacy = true
	rem.Reason = "" // suppressed upstream; belt and braces here

	msg := Render(rem, testLinks())

	if strings.Contains(msg.Body, "cardiología") {
		t.Fatalf("high-privacy body must not name the specialty: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "cita médica") {
		t.Fatalf("high-privacy body should use the neutral wording: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Dra. Marta Ruiz") {
		t.Fatalf("high-privacy body should still name the doctor: %q", msg.Body)
	}
}

func TestRenderCancellationListsAlternatives(t *testing.T) {
	rem := baseReminder(reminder.KindCancellation)
	rem.AlternativeSlots = []time.Time{
		time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	msg := Render(rem, testLinks())

	if !strings.Contains(msg.Body, "cancelada") {
		t.Fatalf("cancellation body missing: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "14/03/2026 a las 11:00") || !strings.Contains(msg.Body, "15/03/2026 a las 10:00") {
		t.Fatalf("alternatives missing from body: %q", msg.Body)
	}
}

func TestRenderWaitlistOfferUsesOfferedStart(t *testing.T) {
	rem := baseReminder(reminder.KindWaitlistOffer)
	offered := time.Date(2026, 3, 20, 16, 0, 0, 0, time.UTC)
	rem.OfferedStart = &offered

	msg := Render(rem, testLinks())

	if !strings.Contains(msg.Body, "20/03/2026 a las 16:00 con Dra. Marta Ruiz") {
		t.Fatalf("offer body should show the offered slot and doctor: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "/cita/confirmar/tok123") || !strings.Contains(msg.Body, "/cita/cancelar/tok123") {
		t.Fatalf("offer body missing accept/decline links: %q", msg.Body)
	}
}
