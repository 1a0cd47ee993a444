package cascade

import (
	"fmt"
	"strings"
	"time"

	"github.com/citaplan/citaplan/libs/token"
	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
)

// Message is the rendered, channel-agnostic text for one notification.
// Channels that have no subject line ignore it.
type Message struct {
	Subject string
	Body    string
}

// Render builds the patient-facing copy for a notification. High-privacy
// specialties get a neutral description with the specialty and visit reason
// withheld on every channel.
func Render(rem reminder.Reminder, links token.Links) Message {
	when := formatWhen(rem.StartTime)
	what := describeVisit(rem)

	switch rem.Kind {
	case reminder.KindConfirmation:
		return Message{
			Subject: "Cita registrada",
			Body: fmt.Sprintf(
				"Hola %s. %s ha quedado registrada para el %s.\n\nConfirmar: %s\nCancelar: %s\nReprogramar: %s",
				rem.PatientName, what, when, links.Confirm, links.Cancel, links.Reschedule,
			),
		}

	case reminder.KindReminder:
		return Message{
			Subject: "Recordatorio de cita",
			Body: fmt.Sprintf(
				"Hola %s. Le recordamos %s el %s.\n\nConfirmar asistencia: %s\nCancelar: %s\nReprogramar: %s",
				rem.PatientName, lowerFirst(what), when, links.Confirm, links.Cancel, links.Reschedule,
			),
		}

	case reminder.KindCancellation:
		body := fmt.Sprintf("Hola %s. %s del %s ha sido cancelada.", rem.PatientName, what, when)
		if len(rem.AlternativeSlots) > 0 {
			var alts []string
			for _, t := range rem.AlternativeSlots {
				alts = append(alts, formatWhen(t))
			}
			body += "\n\nHorarios disponibles:\n" + strings.Join(alts, "\n")
		}
		body += fmt.Sprintf("\n\nReservar un nuevo horario: %s", links.Reschedule)
		return Message{Subject: "Cita cancelada", Body: body}

	case reminder.KindReschedule:
		return Message{
			Subject: "Cita reprogramada",
			Body: fmt.Sprintf(
				"Hola %s. %s ha sido reprogramada para el %s.\n\nConfirmar: %s\nCancelar: %s",
				rem.PatientName, what, when, links.Confirm, links.Cancel,
			),
		}

	case reminder.KindWaitlistOffer:
		offered := rem.StartTime
		if rem.OfferedStart != nil {
			offered = *rem.OfferedStart
		}
		slot := formatWhen(offered)
		if rem.DoctorName != "" {
			slot += " con " + rem.DoctorName
		}
		return Message{
			Subject: "Horario disponible",
			Body: fmt.Sprintf(
				"Hola %s. Se ha liberado un horario que coincide con su solicitud: %s.\n\nTomar este horario: %s\nRechazar: %s",
				rem.PatientName, slot, links.Confirm, links.Cancel,
			),
		}

	case reminder.KindPostVisit:
		return Message{
			Subject: "Gracias por su visita",
			Body: fmt.Sprintf(
				"Hola %s. Gracias por asistir a su cita del %s. Si necesita una nueva cita puede reservarla aquí: %s",
				rem.PatientName, when, links.Reschedule,
			),
		}
	}

	return Message{
		Subject: "Aviso de su clínica",
		Body:    fmt.Sprintf("Hola %s. Tiene una cita el %s.", rem.PatientName, when),
	}
}

// describeVisit names the visit for the patient. High-privacy withholds the
// specialty and reason but keeps the provider, date and time.
func describeVisit(rem reminder.Reminder) string {
	visit := "Su cita"
	switch {
	case rem.HighPrivacy:
		visit = "Su cita médica"
	case rem.Specialty != "":
		visit = "Su cita de " + rem.Specialty
	}
	if rem.DoctorName != "" {
		visit += " con " + rem.DoctorName
	}
	return visit
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func formatWhen(t time.Time) string {
	return t.Format("02/01/2006 a las 15:04")
}
