package response

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/citaplan/citaplan/libs/token"
	"github.com/citaplan/citaplan/services/notification-service/internal/outbox"
	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
)

var (
	// ErrTokenInvalid covers malformed and unknown tokens alike, so a caller
	// probing tokens learns nothing from the distinction.
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	// ErrConflictingResponse means the patient already answered differently.
	ErrConflictingResponse = errors.New("a different response was already recorded")
	// ErrNotRespondable means the notification is in a state the status
	// machine does not accept responses from.
	ErrNotRespondable = errors.New("notification is not awaiting a response")
)

// Handler records patient responses arriving through tokenized links and
// forwards them to the scheduling side via the outbox.
type Handler struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Result describes the recorded (or replayed) response for rendering.
type Result struct {
	Reminder reminder.Reminder
	Response reminder.Response
	Replay   bool
}

// Record applies resp to the notification behind tok. Repeating the same
// response is a no-op success; a different response is rejected. The state
// change and the outgoing event commit atomically.
func (h *Handler) Record(ctx context.Context, tok string, resp reminder.Response) (Result, error) {
	if !token.WellFormed(tok) {
		return Result{}, ErrTokenInvalid
	}
	if !resp.Valid() {
		return Result{}, ErrTokenInvalid
	}

	tx, err := h.store.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rem, found, err := tx.ReminderByToken(ctx, tok)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, ErrTokenInvalid
	}

	if rem.Responded() {
		if *rem.PatientResponse == resp {
			return Result{Reminder: rem, Response: resp, Replay: true}, nil
		}
		return Result{}, ErrConflictingResponse
	}

	if h.now().After(rem.TokenExpiresAt) {
		return Result{}, ErrTokenExpired
	}

	status := rem.Status
	switch resp {
	case reminder.ResponseConfirmed:
		status = reminder.StatusConfirmedByPatient
	case reminder.ResponseCancelled:
		status = reminder.StatusCancelledByPatient
	}
	// Reschedule requests keep the dispatch status, so they are checked
	// against the confirm transition instead: a row whose link never went
	// out takes no response of any kind.
	guard := status
	if guard == rem.Status {
		guard = reminder.StatusConfirmedByPatient
	}
	if !rem.Status.CanBecome(guard) {
		return Result{}, ErrNotRespondable
	}

	ok, err := tx.RecordResponse(ctx, rem.ID, resp, status)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		// Lost a race with another response on the same row.
		return Result{}, ErrConflictingResponse
	}

	if err := h.emitRecorded(ctx, tx, rem, resp); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}

	h.logger.Info("patient response recorded",
		"reminder_id", rem.ID, "kind", rem.Kind, "response", resp)
	return Result{Reminder: rem, Response: resp}, nil
}

func (h *Handler) emitRecorded(ctx context.Context, tx Tx, rem reminder.Reminder, resp reminder.Response) error {
	slotStart := rem.StartTime
	if rem.OfferedStart != nil {
		slotStart = *rem.OfferedStart
	}
	payload, err := json.Marshal(map[string]any{
		"reminder_id":       rem.ID,
		"appointment_id":    rem.AppointmentID,
		"waitlist_entry_id": rem.WaitlistEntryID,
		"response":          resp,
		"slot_start":        slotStart.UTC().Format(time.RFC3339),
		"duration_minutes":  rem.DurationMinutes,
		"specialty":         rem.Specialty,
		"responded_at":      h.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	aggregateID := rem.AppointmentID
	if aggregateID == "" {
		aggregateID = rem.WaitlistEntryID
	}
	return tx.InsertEvent(ctx, outbox.Event{
		AggregateType: "reminder",
		AggregateID:   aggregateID,
		EventType:     outbox.EventResponseRecorded,
		Payload:       payload,
	})
}
