package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/citaplan/citaplan/libs/token"
	"github.com/citaplan/citaplan/services/notification-service/internal/cascade"
	"github.com/citaplan/citaplan/services/notification-service/internal/outbox"
	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
)

// Processor turns scheduling and scheduler events into patient
// notifications: one reminder row, one cascade run, one sent or failed
// event per input.
type Processor struct {
	reminders *reminder.Repository
	cascade   *cascade.Orchestrator
	outbox    *outbox.Repository
	logger    *slog.Logger
	linkBase  string
}

func NewProcessor(reminders *reminder.Repository, orch *cascade.Orchestrator, outboxRepo *outbox.Repository, logger *slog.Logger, linkBase string) *Processor {
	return &Processor{
		reminders: reminders,
		cascade:   orch,
		outbox:    outboxRepo,
		logger:    logger,
		linkBase:  linkBase,
	}
}

// appointmentEvent is the shared shape of the scheduling events. Fields a
// given event does not carry stay zero.
type appointmentEvent struct {
	AppointmentID    string   `json:"appointment_id"`
	WaitlistEntryID  string   `json:"waitlist_entry_id"`
	DoctorID         string   `json:"doctor_id"`
	DoctorName       string   `json:"doctor_name"`
	Specialty        string   `json:"specialty"`
	HighPrivacy      bool     `json:"high_privacy"`
	PatientID        string   `json:"patient_id"`
	PatientName      string   `json:"patient_name"`
	PatientEmail     string   `json:"patient_email"`
	PatientPhone     string   `json:"patient_phone"`
	Reason           string   `json:"reason"`
	Start            string   `json:"start"`
	NewStart         string   `json:"new_start"`
	SlotStart        string   `json:"slot_start"`
	DurationMinutes  int      `json:"duration_minutes"`
	Trigger          string   `json:"trigger"`
	AlternativeSlots []string `json:"alternative_slots"`
}

func (e appointmentEvent) reminderBase() reminder.Reminder {
	rem := reminder.Reminder{
		AppointmentID:   e.AppointmentID,
		WaitlistEntryID: e.WaitlistEntryID,
		DoctorID:        e.DoctorID,
		DoctorName:      e.DoctorName,
		Specialty:       e.Specialty,
		HighPrivacy:     e.HighPrivacy,
		PatientID:       e.PatientID,
		PatientName:     e.PatientName,
		PatientEmail:    e.PatientEmail,
		PatientPhone:    e.PatientPhone,
		DurationMinutes: e.DurationMinutes,
	}
	if !e.HighPrivacy {
		rem.Reason = e.Reason
	}
	return rem
}

func decode(raw []byte) (appointmentEvent, error) {
	var e appointmentEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, err
	}
	return e, nil
}

func parseEventTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// HandleBooked sends the booking confirmation.
func (p *Processor) HandleBooked(ctx context.Context, raw []byte) error {
	e, err := decode(raw)
	if err != nil {
		p.logger.Error("invalid booked payload", "err", err)
		return nil
	}
	start, err := parseEventTime(e.Start)
	if err != nil {
		p.logger.Error("invalid booked start", "err", err)
		return nil
	}
	rem := e.reminderBase()
	rem.Kind = reminder.KindConfirmation
	rem.Trigger = reminder.TriggerImmediate
	rem.StartTime = start
	return p.dispatch(ctx, rem)
}

// HandleCancelled notifies the patient, alternatives included when the event
// carries them. Unfired reminder triggers are dropped at the source: the
// scheduler cancels the appointment's pending jobs, so no due event arrives
// here for a cancelled appointment.
func (p *Processor) HandleCancelled(ctx context.Context, raw []byte) error {
	e, err := decode(raw)
	if err != nil {
		p.logger.Error("invalid cancelled payload", "err", err)
		return nil
	}
	start, err := parseEventTime(e.Start)
	if err != nil {
		p.logger.Error("invalid cancelled start", "err", err)
		return nil
	}

	rem := e.reminderBase()
	rem.Kind = reminder.KindCancellation
	rem.Trigger = reminder.TriggerImmediate
	rem.StartTime = start
	for _, s := range e.AlternativeSlots {
		if t, err := parseEventTime(s); err == nil {
			rem.AlternativeSlots = append(rem.AlternativeSlots, t)
		}
	}
	return p.dispatch(ctx, rem)
}

// HandleMoved tells the patient about the new time.
func (p *Processor) HandleMoved(ctx context.Context, raw []byte) error {
	e, err := decode(raw)
	if err != nil {
		p.logger.Error("invalid moved payload", "err", err)
		return nil
	}
	newStart, err := parseEventTime(e.NewStart)
	if err != nil {
		p.logger.Error("invalid moved new_start", "err", err)
		return nil
	}
	rem := e.reminderBase()
	rem.Kind = reminder.KindReschedule
	rem.Trigger = reminder.TriggerImmediate
	rem.StartTime = newStart
	return p.dispatch(ctx, rem)
}

// HandleWaitlistOffer puts a freed slot in front of a matched patient.
func (p *Processor) HandleWaitlistOffer(ctx context.Context, raw []byte) error {
	e, err := decode(raw)
	if err != nil {
		p.logger.Error("invalid offer payload", "err", err)
		return nil
	}
	slotStart, err := parseEventTime(e.SlotStart)
	if err != nil {
		p.logger.Error("invalid offer slot_start", "err", err)
		return nil
	}
	rem := e.reminderBase()
	rem.Kind = reminder.KindWaitlistOffer
	rem.Trigger = reminder.TriggerImmediate
	rem.StartTime = slotStart
	rem.OfferedStart = &slotStart
	return p.dispatch(ctx, rem)
}

// HandleReminderDue dispatches a timed reminder. The (appointment, trigger)
// pair dispatches once even when the due event is redelivered.
func (p *Processor) HandleReminderDue(ctx context.Context, raw []byte) error {
	e, err := decode(raw)
	if err != nil {
		p.logger.Error("invalid reminder payload", "err", err)
		return nil
	}
	start, err := parseEventTime(e.Start)
	if err != nil {
		p.logger.Error("invalid reminder start", "err", err)
		return nil
	}

	trigger := reminder.Trigger(e.Trigger)
	done, err := p.reminders.HasDispatched(ctx, e.AppointmentID, trigger)
	if err != nil {
		return err
	}
	if done {
		p.logger.Info("reminder already dispatched", "appointment_id", e.AppointmentID, "trigger", trigger)
		return nil
	}

	rem := e.reminderBase()
	rem.Trigger = trigger
	rem.StartTime = start
	if trigger == reminder.TriggerPostVisit {
		rem.Kind = reminder.KindPostVisit
	} else {
		rem.Kind = reminder.KindReminder
	}
	return p.dispatch(ctx, rem)
}

// dispatch persists the notification, runs the cascade, and records the
// outcome both on the row and as an event.
func (p *Processor) dispatch(ctx context.Context, rem reminder.Reminder) error {
	tok, err := token.New()
	if err != nil {
		return fmt.Errorf("mint response token: %w", err)
	}
	rem.Token = tok
	rem.TokenExpiresAt = rem.TokenExpiry()
	rem.Status = reminder.StatusProcessing

	if _, err := p.reminders.Create(ctx, &rem); err != nil {
		return fmt.Errorf("persist reminder: %w", err)
	}

	msg := cascade.Render(rem, token.BuildLinks(p.linkBase, tok))
	res := p.cascade.Dispatch(ctx, rem, msg)

	if err := p.reminders.FinalizeDispatch(ctx, rem.ID, res.Attempts, res.SentChannel, res.Status); err != nil {
		return fmt.Errorf("finalize dispatch: %w", err)
	}

	if res.Status == reminder.StatusSent {
		p.logger.Info("notification sent",
			"reminder_id", rem.ID, "kind", rem.Kind, "channel", res.SentChannel)
		return p.emitOutcome(ctx, rem, outbox.EventNotificationSent, map[string]any{
			"channel": res.SentChannel,
			"sent_at": time.Now().UTC().Format(time.RFC3339),
		})
	}

	p.logger.Error("all channels failed",
		"reminder_id", rem.ID, "kind", rem.Kind, "attempts", len(res.Attempts))
	return p.emitOutcome(ctx, rem, outbox.EventNotificationFailed, map[string]any{
		"attempts":  res.Attempts,
		"failed_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Processor) emitOutcome(ctx context.Context, rem reminder.Reminder, eventType string, extra map[string]any) error {
	body := map[string]any{
		"reminder_id":       rem.ID,
		"appointment_id":    rem.AppointmentID,
		"waitlist_entry_id": rem.WaitlistEntryID,
		"kind":              rem.Kind,
		"trigger":           rem.Trigger,
	}
	for k, v := range extra {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	tx, err := p.reminders.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := p.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "reminder",
		AggregateID:   rem.ID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
