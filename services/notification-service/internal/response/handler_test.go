package response

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/citaplan/citaplan/libs/token"
	"github.com/citaplan/citaplan/services/notification-service/internal/outbox"
	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
)

type fakeStore struct {
	reminders map[string]*reminder.Reminder
	events    []outbox.Event
	commits   int
}

func (s *fakeStore) Begin(context.Context) (Tx, error) { return &fakeTx{store: s}, nil }

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) ReminderByToken(_ context.Context, tok string) (reminder.Reminder, bool, error) {
	rem, ok := t.store.reminders[tok]
	if !ok {
		return reminder.Reminder{}, false, nil
	}
	return *rem, true, nil
}

func (t *fakeTx) RecordResponse(_ context.Context, id string, resp reminder.Response, status reminder.Status) (bool, error) {
	for _, rem := range t.store.reminders {
		if rem.ID != id {
			continue
		}
		if rem.PatientResponse != nil {
			return false, nil
		}
		r := resp
		at := time.Now()
		rem.PatientResponse = &r
		rem.RespondedAt = &at
		rem.Status = status
		return true, nil
	}
	return false, nil
}

func (t *fakeTx) InsertEvent(_ context.Context, ev outbox.Event) error {
	t.store.events = append(t.store.events, ev)
	return nil
}

func (t *fakeTx) Commit(context.Context) error   { t.store.commits++; return nil }
func (t *fakeTx) Rollback(context.Context) error { return nil }

func newTestHandler(t *testing.T, rem *reminder.Reminder) (*Handler, *fakeStore, string) {
	t.Helper()
	tok, err := token.New()
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	rem.Token = tok
	store := &fakeStore{reminders: map[string]*reminder.Reminder{tok: rem}}
	h := NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h, store, tok
}

func sentReminder(now time.Time) *reminder.Reminder {
	return &reminder.Reminder{
		ID:             "rem-1",
		AppointmentID:  "appt-1",
		Kind:           reminder.KindReminder,
		StartTime:      now.Add(4 * time.Hour),
		TokenExpiresAt: now.Add(4 * time.Hour),
		Status:         reminder.StatusSent,
	}
}

func TestRecordConfirm(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	h, store, tok := newTestHandler(t, sentReminder(now))
	h.now = func() time.Time { return now }

	res, err := h.Record(context.Background(), tok, reminder.ResponseConfirmed)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if res.Replay {
		t.Fatalf("first response flagged as replay")
	}
	if got := store.reminders[tok].Status; got != reminder.StatusConfirmedByPatient {
		t.Fatalf("status = %s, want confirmed_by_patient", got)
	}
	if store.commits != 1 {
		t.Fatalf("commits = %d, want 1", store.commits)
	}
	if len(store.events) != 1 || store.events[0].EventType != outbox.EventResponseRecorded {
		t.Fatalf("response event not emitted: %+v", store.events)
	}
}

func TestRecordSameResponseReplaysIdempotently(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	h, store, tok := newTestHandler(t, sentReminder(now))
	h.now = func() time.Time { return now }

	if _, err := h.Record(context.Background(), tok, reminder.ResponseConfirmed); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	res, err := h.Record(context.Background(), tok, reminder.ResponseConfirmed)
	if err != nil {
		t.Fatalf("replay Record: %v", err)
	}
	if !res.Replay {
		t.Fatalf("repeat of the same response should be flagged as replay")
	}
	if len(store.events) != 1 {
		t.Fatalf("replay emitted an extra event: %d", len(store.events))
	}
	if store.commits != 1 {
		t.Fatalf("replay committed again: %d", store.commits)
	}
}

func TestRecordConflictingResponseRejected(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	h, store, tok := newTestHandler(t, sentReminder(now))
	h.now = func() time.Time { return now }

	if _, err := h.Record(context.Background(), tok, reminder.ResponseConfirmed); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if _, err := h.Record(context.Background(), tok, reminder.ResponseCancelled); !errors.Is(err, ErrConflictingResponse) {
		t.Fatalf("err = %v, want ErrConflictingResponse", err)
	}
	if got := store.reminders[tok].Status; got != reminder.StatusConfirmedByPatient {
		t.Fatalf("conflicting response downgraded the status to %s", got)
	}
}

func TestRecordInvalidTokens(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	h, _, _ := newTestHandler(t, sentReminder(now))
	h.now = func() time.Time { return now }

	if _, err := h.Record(context.Background(), "not-a-token", reminder.ResponseConfirmed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("malformed token: err = %v, want ErrTokenInvalid", err)
	}
	unknown, err := token.New()
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	if _, err := h.Record(context.Background(), unknown, reminder.ResponseConfirmed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("unknown token: err = %v, want ErrTokenInvalid", err)
	}
}

func TestRecordExpiredOneSecondPast(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	rem := sentReminder(now)
	rem.TokenExpiresAt = now.Add(-time.Second)
	h, store, tok := newTestHandler(t, rem)
	h.now = func() time.Time { return now }

	if _, err := h.Record(context.Background(), tok, reminder.ResponseConfirmed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
	if store.reminders[tok].PatientResponse != nil {
		t.Fatalf("expired link still recorded a response")
	}
}

func TestRecordAtExpiryBoundaryStillCounts(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	rem := sentReminder(now)
	rem.TokenExpiresAt = now
	h, _, tok := newTestHandler(t, rem)
	h.now = func() time.Time { return now }

	if _, err := h.Record(context.Background(), tok, reminder.ResponseConfirmed); err != nil {
		t.Fatalf("response exactly at expiry rejected: %v", err)
	}
}

func TestRecordFailedDispatchTakesNoResponse(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	rem := sentReminder(now)
	rem.Status = reminder.StatusFailed
	h, store, tok := newTestHandler(t, rem)
	h.now = func() time.Time { return now }

	for _, resp := range []reminder.Response{
		reminder.ResponseConfirmed,
		reminder.ResponseCancelled,
		reminder.ResponseRescheduleRequested,
	} {
		if _, err := h.Record(context.Background(), tok, resp); !errors.Is(err, ErrNotRespondable) {
			t.Fatalf("%s on failed row: err = %v, want ErrNotRespondable", resp, err)
		}
	}
	if store.reminders[tok].Status != reminder.StatusFailed {
		t.Fatalf("failed row changed status to %s", store.reminders[tok].Status)
	}
}

func TestRecordWhileStillProcessing(t *testing.T) {
	// A fast click can land while the cascade is mid-flight; the response
	// wins and the dispatch outcome must not overwrite it later.
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	rem := sentReminder(now)
	rem.Status = reminder.StatusProcessing
	h, store, tok := newTestHandler(t, rem)
	h.now = func() time.Time { return now }

	if _, err := h.Record(context.Background(), tok, reminder.ResponseConfirmed); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := store.reminders[tok].Status; got != reminder.StatusConfirmedByPatient {
		t.Fatalf("status = %s, want confirmed_by_patient", got)
	}
}
