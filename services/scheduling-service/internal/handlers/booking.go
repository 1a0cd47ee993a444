package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/citaplan/citaplan/services/scheduling-service/internal/availability"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/outbox"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/slotlock"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/storage"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/waitlist"
)

type createAppointmentRequest struct {
	DoctorID        string `json:"doctor_id"`
	DoctorName      string `json:"doctor_name"`
	PatientID       string `json:"patient_id"`
	PatientName     string `json:"patient_name"`
	PatientEmail    string `json:"patient_email"`
	PatientPhone    string `json:"patient_phone"`
	LocationID      string `json:"location_id"`
	Specialty       string `json:"specialty"`
	Reason          string `json:"reason"`
	Start           string `json:"start"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (h *SchedulingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.PatientName = strings.TrimSpace(req.PatientName)
	if req.DoctorID == "" || req.PatientName == "" {
		http.Error(w, "doctor_id and patient_name required", http.StatusBadRequest)
		return
	}
	start, ok := parseRFC3339(req.Start)
	if !ok {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	if req.DurationMinutes <= 0 {
		http.Error(w, "duration_minutes must be positive", http.StatusBadRequest)
		return
	}

	appt := &model.Appointment{
		DoctorID:        req.DoctorID,
		DoctorName:      strings.TrimSpace(req.DoctorName),
		PatientID:       strings.TrimSpace(req.PatientID),
		PatientName:     req.PatientName,
		PatientEmail:    strings.TrimSpace(req.PatientEmail),
		PatientPhone:    strings.TrimSpace(req.PatientPhone),
		LocationID:      strings.TrimSpace(req.LocationID),
		Specialty:       strings.TrimSpace(req.Specialty),
		Reason:          strings.TrimSpace(req.Reason),
		Start:           start,
		DurationMinutes: req.DurationMinutes,
		Status:          model.StatusPending,
		IdempotencyKey:  strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	}

	ctx := r.Context()
	if appt.IdempotencyKey != "" {
		if existing, err := h.appts.GetByIdempotencyKey(ctx, appt.IdempotencyKey); err == nil {
			writeJSON(w, http.StatusOK, map[string]string{"appointment_id": existing.ID})
			return
		} else if !storage.IsNotFound(err) {
			http.Error(w, "idempotency lookup failed", http.StatusInternalServerError)
			return
		}
	}
	if ok, err := h.withinAvailability(ctx, appt); err != nil {
		http.Error(w, "availability check failed", http.StatusInternalServerError)
		return
	} else if !ok {
		http.Error(w, "requested time is outside the doctor's availability", http.StatusUnprocessableEntity)
		return
	}

	// Advisory pre-check; the exclusion constraint is authoritative at insert.
	if conflict, err := h.advisoryConflict(ctx, appt); err != nil {
		http.Error(w, "conflict check failed", http.StatusInternalServerError)
		return
	} else if conflict.Conflict {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":          "slot unavailable",
			"conflicting_id": conflict.ConflictingID,
		})
		return
	}

	var id string
	err := h.locker.WithSlotLock(ctx, appt.DoctorID, appt.Start, func(ctx context.Context) error {
		tx, err := h.appts.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		id, err = h.appts.Create(ctx, tx, appt)
		if err != nil {
			return err
		}
		appt.ID = id
		if err := h.emitBooked(ctx, tx, appt); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		switch {
		case errors.Is(err, slotlock.ErrNotAcquired):
			http.Error(w, "slot is being booked by someone else, retry", http.StatusConflict)
		case storage.IsSlotTaken(err):
			http.Error(w, "slot unavailable", http.StatusConflict)
		case storage.IsDuplicateKey(err) && appt.IdempotencyKey != "":
			// Concurrent replay of the same Idempotency-Key; the first
			// insert won, return it.
			if existing, lookupErr := h.appts.GetByIdempotencyKey(ctx, appt.IdempotencyKey); lookupErr == nil {
				writeJSON(w, http.StatusOK, map[string]string{"appointment_id": existing.ID})
				return
			}
			http.Error(w, "duplicate booking request", http.StatusConflict)
		default:
			h.logger.Error("booking failed", "err", err, "doctor_id", appt.DoctorID)
			http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"appointment_id": id})
}

func (h *SchedulingHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.appts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appointmentView(appt))
}

type cancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

func (h *SchedulingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req cancelAppointmentRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	out, err := h.cancelAppointment(r.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("cancellation failed", "err", err, "appointment_id", id)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}
	if out.AlreadyCancelled {
		writeJSON(w, http.StatusOK, map[string]any{"appointment_id": id, "status": model.StatusCancelled})
		return
	}
	if out.InvalidState {
		http.Error(w, "appointment cannot be cancelled in its current state", http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"appointment_id":  id,
		"status":          model.StatusCancelled,
		"cancelled_at":    out.CancelledAt.UTC().Format(time.RFC3339),
		"waitlist_offers": out.WaitlistOffers,
	})
}

type cancelOutcome struct {
	AlreadyCancelled bool
	InvalidState     bool
	CancelledAt      time.Time
	WaitlistOffers   int
}

// cancelAppointment runs the full cancellation flow in one transaction: the
// guarded status flip, the waitlist rematch with offer events, and the
// cancelled event. Shared by the HTTP handler and the response consumer.
func (h *SchedulingHandler) cancelAppointment(ctx context.Context, id, reason string) (cancelOutcome, error) {
	tx, err := h.appts.Begin(ctx)
	if err != nil {
		return cancelOutcome{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appts.GetForUpdate(ctx, tx, id)
	if err != nil {
		return cancelOutcome{}, err
	}
	if appt.Status == model.StatusCancelled {
		return cancelOutcome{AlreadyCancelled: true}, nil
	}
	if appt.Status != model.StatusPending && appt.Status != model.StatusConfirmed {
		return cancelOutcome{InvalidState: true}, nil
	}

	cancelledAt, err := h.appts.Cancel(ctx, tx, appt.ID, reason)
	if err != nil {
		return cancelOutcome{}, err
	}

	// Rematching rides in the same transaction so no offer is silently lost.
	offers, err := h.offerFreedSlot(ctx, tx, appt)
	if err != nil {
		return cancelOutcome{}, err
	}
	if err := h.emitCancelled(ctx, tx, appt, cancelledAt, reason); err != nil {
		return cancelOutcome{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return cancelOutcome{}, err
	}
	return cancelOutcome{CancelledAt: cancelledAt, WaitlistOffers: offers}, nil
}

// offerFreedSlot runs the waitlist rematch for a just-cancelled appointment:
// matched entries are transitioned to notified and one offer event per entry
// goes out through the outbox.
func (h *SchedulingHandler) offerFreedSlot(ctx context.Context, tx pgx.Tx, appt model.Appointment) (int, error) {
	waiting, err := h.waitlist.ListByDoctor(ctx, appt.DoctorID, model.WaitlistWaiting)
	if err != nil {
		return 0, err
	}
	freed := waitlist.FreedSlot{
		Day:             appt.Start.Weekday(),
		Start:           appt.Start,
		DurationMinutes: appt.DurationMinutes,
	}
	matched := waitlist.Match(freed, waiting)
	if len(matched) > h.notifyLimit {
		matched = matched[:h.notifyLimit]
	}
	if len(matched) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(matched))
	byID := make(map[string]model.WaitlistEntry, len(matched))
	for _, e := range matched {
		ids = append(ids, e.ID)
		byID[e.ID] = e
	}
	notified, err := h.waitlist.MarkNotified(ctx, tx, ids, appt.Start)
	if err != nil {
		return 0, err
	}

	highPrivacy := h.highPrivacy(ctx, appt.Specialty)
	for _, id := range notified {
		e := byID[id]
		payload, err := json.Marshal(map[string]any{
			"waitlist_entry_id": e.ID,
			"appointment_id":    appt.ID,
			"doctor_id":         appt.DoctorID,
			"doctor_name":       appt.DoctorName,
			"specialty":         appt.Specialty,
			"high_privacy":      highPrivacy,
			"patient_id":        e.PatientID,
			"patient_name":      e.PatientName,
			"patient_email":     e.PatientEmail,
			"patient_phone":     e.PatientPhone,
			"slot_start":        appt.Start.UTC().Format(time.RFC3339),
			"duration_minutes":  appt.DurationMinutes,
		})
		if err != nil {
			return 0, err
		}
		if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
			AggregateType: "waitlist_entry",
			AggregateID:   e.ID,
			EventType:     outbox.EventWaitlistOffer,
			Payload:       payload,
		}); err != nil {
			return 0, err
		}
	}
	return len(notified), nil
}

func (h *SchedulingHandler) emitBooked(ctx context.Context, tx pgx.Tx, appt *model.Appointment) error {
	offsets := h.reminderOffsetsMinutes(ctx, appt.DoctorID)
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
		"reason":                   appt.Reason,
		"start":                    appt.Start.UTC().Format(time.RFC3339),
		"duration_minutes":         appt.DurationMinutes,
		"reminder_offsets_minutes": offsets,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       payload,
	})
}

func (h *SchedulingHandler) emitCancelled(ctx context.Context, tx pgx.Tx, appt model.Appointment, cancelledAt time.Time, reason string) error {
	alternatives := h.alternativeSlots(ctx, appt, 3)
	altStrs := make([]string, 0, len(alternatives))
	for _, t := range alternatives {
		altStrs = append(altStrs, t.UTC().Format(time.RFC3339))
	}
	payload, err := json.Marshal(map[string]any{
		"appointment_id":    appt.ID,
		"doctor_id":         appt.DoctorID,
		"doctor_name":       appt.DoctorName,
		"specialty":         appt.Specialty,
		"high_privacy":      h.highPrivacy(ctx, appt.Specialty),
		"patient_id":        appt.PatientID,
		"patient_name":      appt.PatientName,
		"patient_email":     appt.PatientEmail,
		"patient_phone":     appt.PatientPhone,
		"start":             appt.Start.UTC().Format(time.RFC3339),
		"duration_minutes":  appt.DurationMinutes,
		"cancelled_at":      cancelledAt.UTC().Format(time.RFC3339),
		"reason":            reason,
		"alternative_slots": altStrs,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentCancelled,
		Payload:       payload,
	})
}

// alternativeSlots proposes open slots on the appointment's day for the
// cancellation notice. Best-effort: failures just mean an empty list.
func (h *SchedulingHandler) alternativeSlots(ctx context.Context, appt model.Appointment, limit int) []time.Time {
	slots, err := h.engine.ComputeSlots(ctx, appt.DoctorID, appt.Start, time.Duration(appt.DurationMinutes)*time.Minute)
	if err != nil {
		h.logger.Warn("alternative slot lookup failed", "err", err, "doctor_id", appt.DoctorID)
		return nil
	}
	now := time.Now()
	var out []time.Time
	for _, s := range slots {
		if !s.Available || s.Start.Before(now) {
			continue
		}
		out = append(out, s.Start)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (h *SchedulingHandler) withinAvailability(ctx context.Context, appt *model.Appointment) (bool, error) {
	windows, err := h.schedule.AvailabilityWindows(ctx, appt.DoctorID, appt.Start.Weekday())
	if err != nil {
		return false, err
	}
	startMin := model.MinuteOfDay(appt.Start)
	endMin := startMin + appt.DurationMinutes
	for _, win := range windows {
		if win.Active && startMin >= win.StartMinute && endMin <= win.EndMinute {
			return true, nil
		}
	}
	return false, nil
}

func (h *SchedulingHandler) advisoryConflict(ctx context.Context, appt *model.Appointment) (availability.Conflict, error) {
	existing, err := h.occupiedIntervals(ctx, appt.DoctorID, appt.Start, appt.End())
	if err != nil {
		return availability.Conflict{}, err
	}
	candidate := availability.Interval{ID: appt.ID, Start: appt.Start, End: appt.End()}
	return availability.CheckConflict(candidate, existing), nil
}

// occupiedIntervals gathers occupying appointments and time blocks that touch
// [from, to) for conflict evaluation.
func (h *SchedulingHandler) occupiedIntervals(ctx context.Context, doctorID string, from, to time.Time) ([]availability.Interval, error) {
	appts, err := h.appts.AppointmentsInRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	blocks, err := h.schedule.TimeBlocksInRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	intervals := make([]availability.Interval, 0, len(appts)+len(blocks))
	for _, a := range appts {
		if !a.Status.Occupying() {
			continue
		}
		intervals = append(intervals, availability.Interval{ID: a.ID, Start: a.Start, End: a.End()})
	}
	for _, b := range blocks {
		intervals = append(intervals, availability.Interval{ID: b.ID, Start: b.Start, End: b.End})
	}
	return intervals, nil
}

func (h *SchedulingHandler) highPrivacy(ctx context.Context, specialty string) bool {
	private, err := h.directory.HighPrivacy(ctx, specialty)
	if err != nil {
		h.logger.Warn("privacy lookup failed; treating specialty as high-privacy", "err", err, "specialty", specialty)
		return true
	}
	return private
}

func (h *SchedulingHandler) reminderOffsetsMinutes(ctx context.Context, doctorID string) []int {
	offsets, err := h.directory.ReminderOffsets(ctx, doctorID)
	if err != nil || len(offsets) == 0 {
		if err != nil {
			h.logger.Warn("reminder offsets lookup failed; using defaults", "err", err)
		}
		return []int{1440, 120}
	}
	mins := make([]int, 0, len(offsets))
	for _, d := range offsets {
		mins = append(mins, int(d.Minutes()))
	}
	return mins
}

func appointmentView(appt model.Appointment) map[string]any {
	view := map[string]any{
		"appointment_id":   appt.ID,
		"doctor_id":        appt.DoctorID,
		"patient_name":     appt.PatientName,
		"start":            appt.Start.UTC().Format(time.RFC3339),
		"duration_minutes": appt.DurationMinutes,
		"status":           appt.Status,
	}
	if appt.CancelledAt != nil {
		view["cancelled_at"] = appt.CancelledAt.UTC().Format(time.RFC3339)
	}
	return view
}
