package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/storage"
)

// PatientResponse is the decoded payload of a recorded patient response,
// consumed from the notification side.
type PatientResponse struct {
	AppointmentID   string    `json:"appointment_id"`
	WaitlistEntryID string    `json:"waitlist_entry_id"`
	Response        string    `json:"response"`
	SlotStart       time.Time `json:"slot_start"`
	DurationMinutes int       `json:"duration_minutes"`
	Specialty       string    `json:"specialty"`
}

// ApplyPatientResponse applies a patient's link response to scheduling state.
// Responses against a waitlist offer accept or decline the offered slot;
// responses against an appointment confirm or cancel it. Replays and races
// resolve through the guarded transitions, so a no-op result is not an error.
func (h *SchedulingHandler) ApplyPatientResponse(ctx context.Context, resp PatientResponse) error {
	if resp.WaitlistEntryID != "" {
		return h.applyOfferResponse(ctx, resp)
	}

	switch resp.Response {
	case "confirmed":
		tx, err := h.appts.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()
		ok, err := h.appts.UpdateStatus(ctx, tx, resp.AppointmentID, model.StatusConfirmed, []model.AppointmentStatus{model.StatusPending})
		if err != nil {
			return err
		}
		if !ok {
			h.logger.Info("confirmation ignored, appointment not pending", "appointment_id", resp.AppointmentID)
			return nil
		}
		return tx.Commit(ctx)

	case "cancelled":
		out, err := h.cancelAppointment(ctx, resp.AppointmentID, "cancelled by patient via link")
		if err != nil {
			if storage.IsNotFound(err) {
				h.logger.Warn("cancellation response for unknown appointment", "appointment_id", resp.AppointmentID)
				return nil
			}
			return err
		}
		if out.AlreadyCancelled || out.InvalidState {
			h.logger.Info("cancellation response was a no-op", "appointment_id", resp.AppointmentID)
		}
		return nil

	case "reschedule_requested":
		// No state change. The appointment stands until the patient books a
		// new slot or staff move it.
		h.logger.Info("reschedule requested", "appointment_id", resp.AppointmentID)
		return nil

	default:
		return fmt.Errorf("unknown response %q", resp.Response)
	}
}

func (h *SchedulingHandler) applyOfferResponse(ctx context.Context, resp PatientResponse) error {
	switch resp.Response {
	case "confirmed":
		return h.bookFromOffer(ctx, resp)
	case "cancelled":
		ok, err := h.waitlist.UpdateStatus(ctx, resp.WaitlistEntryID, model.WaitlistCancelled, []model.WaitlistStatus{model.WaitlistNotified})
		if err != nil {
			return err
		}
		if !ok {
			h.logger.Info("offer decline was a no-op", "waitlist_entry_id", resp.WaitlistEntryID)
		}
		return nil
	default:
		return fmt.Errorf("unknown offer response %q", resp.Response)
	}
}

// bookFromOffer converts an accepted waitlist offer into a real appointment.
// The exclusion constraint arbitrates when two accepted offers race for the
// same slot; the loser's entry goes back to waiting.
func (h *SchedulingHandler) bookFromOffer(ctx context.Context, resp PatientResponse) error {
	entry, err := h.waitlist.Get(ctx, resp.WaitlistEntryID)
	if err != nil {
		if storage.IsNotFound(err) {
			h.logger.Warn("offer response for unknown waitlist entry", "waitlist_entry_id", resp.WaitlistEntryID)
			return nil
		}
		return err
	}

	if entry.OfferLapsed(time.Now()) {
		if _, err := h.waitlist.UpdateStatus(ctx, entry.ID, model.WaitlistExpired, []model.WaitlistStatus{model.WaitlistNotified}); err != nil {
			return err
		}
		h.logger.Info("offer lapsed before acceptance, entry expired", "waitlist_entry_id", entry.ID)
		return nil
	}

	duration := resp.DurationMinutes
	if duration <= 0 {
		duration = entry.EstimatedDurationMinutes
	}

	tx, err := h.appts.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ok, err := h.waitlist.Transition(ctx, tx, entry.ID, model.WaitlistConfirmed, []model.WaitlistStatus{model.WaitlistNotified})
	if err != nil {
		return err
	}
	if !ok {
		h.logger.Info("offer acceptance was a no-op", "waitlist_entry_id", entry.ID, "status", entry.Status)
		return nil
	}

	appt := &model.Appointment{
		DoctorID:        entry.DoctorID,
		PatientID:       entry.PatientID,
		PatientName:     entry.PatientName,
		PatientEmail:    entry.PatientEmail,
		PatientPhone:    entry.PatientPhone,
		Specialty:       resp.Specialty,
		Start:           resp.SlotStart,
		DurationMinutes: duration,
		Status:          model.StatusConfirmed,
	}
	if _, err := h.appts.Create(ctx, tx, appt); err != nil {
		if storage.IsSlotTaken(err) {
			_ = tx.Rollback(ctx)
			if _, reErr := h.waitlist.UpdateStatus(ctx, entry.ID, model.WaitlistWaiting, []model.WaitlistStatus{model.WaitlistNotified}); reErr != nil {
				return reErr
			}
			h.logger.Info("offered slot already taken, entry returned to waiting", "waitlist_entry_id", entry.ID)
			return nil
		}
		return err
	}
	if err := h.emitBooked(ctx, tx, appt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
