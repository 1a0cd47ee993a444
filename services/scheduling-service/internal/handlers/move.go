package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/availability"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/outbox"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/storage"
)

type moveAppointmentRequest struct {
	NewStart string `json:"new_start"`
}

// Move handles drag-and-drop rescheduling. The target slot is classified as
// free, blocked, or swap; a swap exchanges intervals with the single
// occupant in one transaction.
func (h *SchedulingHandler) Move(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req moveAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	newStart, ok := parseRFC3339(req.NewStart)
	if !ok {
		http.Error(w, "invalid new_start", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.appts.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appts.GetForUpdate(ctx, tx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if appt.Status != model.StatusPending && appt.Status != model.StatusConfirmed {
		http.Error(w, "appointment cannot be moved in its current state", http.StatusConflict)
		return
	}

	duration := time.Duration(appt.DurationMinutes) * time.Minute
	candidate := availability.Interval{Start: newStart, End: newStart.Add(duration)}

	target := &model.Appointment{DoctorID: appt.DoctorID, Start: newStart, DurationMinutes: appt.DurationMinutes}
	if ok, err := h.withinAvailability(ctx, target); err != nil {
		http.Error(w, "availability check failed", http.StatusInternalServerError)
		return
	} else if !ok {
		http.Error(w, "target time is outside the doctor's availability", http.StatusUnprocessableEntity)
		return
	}

	existing, err := h.occupiedIntervals(ctx, appt.DoctorID, candidate.Start, candidate.End)
	if err != nil {
		http.Error(w, "conflict check failed", http.StatusInternalServerError)
		return
	}

	drag := availability.DragState{
		AppointmentID: appt.ID,
		OriginalStart: appt.Start,
		OriginalEnd:   appt.End(),
	}
	class, occupantID := availability.Classify(candidate, drag, existing, time.Now())

	switch class {
	case availability.ClassBlocked:
		writeJSON(w, http.StatusConflict, map[string]any{
			"classification": class.String(),
			"occupant_id":    occupantID,
		})
		return

	case availability.ClassFree:
		if err := h.appts.Move(ctx, tx, appt.ID, newStart); err != nil {
			if storage.IsSlotTaken(err) {
				http.Error(w, "slot unavailable", http.StatusConflict)
				return
			}
			http.Error(w, "failed to move appointment", http.StatusInternalServerError)
			return
		}
		if err := h.emitMoved(ctx, tx, appt, newStart, ""); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}

	case availability.ClassSwap:
		// Both rows change inside the deferred exclusion constraint, so the
		// intermediate state where they briefly coexist is tolerated.
		if _, err := tx.Exec(ctx, `SET CONSTRAINTS ALL DEFERRED`); err != nil {
			http.Error(w, "failed to prepare swap", http.StatusInternalServerError)
			return
		}
		occupant, err := h.appts.GetForUpdate(ctx, tx, occupantID)
		if err != nil {
			http.Error(w, "failed to load swap partner", http.StatusInternalServerError)
			return
		}
		if err := h.appts.Move(ctx, tx, occupant.ID, appt.Start); err != nil {
			http.Error(w, "failed to move swap partner", http.StatusInternalServerError)
			return
		}
		if err := h.appts.Move(ctx, tx, appt.ID, newStart); err != nil {
			if storage.IsSlotTaken(err) {
				http.Error(w, "slot unavailable", http.StatusConflict)
				return
			}
			http.Error(w, "failed to move appointment", http.StatusInternalServerError)
			return
		}
		if err := h.emitMoved(ctx, tx, appt, newStart, occupant.ID); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
		if err := h.emitMoved(ctx, tx, occupant, appt.Start, appt.ID); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if storage.IsSlotTaken(err) {
			http.Error(w, "slot unavailable", http.StatusConflict)
			return
		}
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"classification": class.String(),
		"appointment_id": appt.ID,
		"new_start":      newStart.UTC().Format(time.RFC3339),
		"swapped_with":   occupantIDForView(class, occupantID),
	})
}

func occupantIDForView(class availability.Classification, occupantID string) string {
	if class == availability.ClassSwap {
		return occupantID
	}
	return ""
}

func (h *SchedulingHandler) emitMoved(ctx context.Context, tx pgx.Tx, appt model.Appointment, newStart time.Time, swappedWith string) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id":           appt.ID,
		"doctor_id":                appt.DoctorID,
		"doctor_name":              appt.DoctorName,
		"specialty":                appt.Specialty,
		"high_privacy":             h.highPrivacy(ctx, appt.Specialty),
		"patient_id":               appt.PatientID,
		"patient_name":             appt.PatientName,
		"patient_email":            appt.PatientEmail,
		"patient_phone":            appt.PatientPhone,
		"old_start":                appt.Start.UTC().Format(time.RFC3339),
		"new_start":                newStart.UTC().Format(time.RFC3339),
		"duration_minutes":         appt.DurationMinutes,
		"swapped_with":             swappedWith,
		"reminder_offsets_minutes": h.reminderOffsetsMinutes(ctx, appt.DoctorID),
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentMoved,
		Payload:       payload,
	})
}
