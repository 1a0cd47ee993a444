package response

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/citaplan/citaplan/services/notification-service/internal/outbox"
	"github.com/citaplan/citaplan/services/notification-service/internal/reminder"
)

// Store opens one transactional unit of response recording. The production
// implementation wraps the reminder and outbox repositories over a single
// database transaction; tests substitute an in-memory one.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx scopes one response recording. The loaded reminder stays locked until
// Commit, which makes the state change and the outgoing event durable
// together.
type Tx interface {
	// ReminderByToken loads and locks the record behind tok. found is false
	// for unknown tokens.
	ReminderByToken(ctx context.Context, tok string) (rem reminder.Reminder, found bool, err error)
	RecordResponse(ctx context.Context, id string, resp reminder.Response, status reminder.Status) (bool, error)
	InsertEvent(ctx context.Context, ev outbox.Event) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pgStore struct {
	reminders *reminder.Repository
	outbox    *outbox.Repository
}

func NewStore(reminders *reminder.Repository, outboxRepo *outbox.Repository) Store {
	return &pgStore{reminders: reminders, outbox: outboxRepo}
}

func (s *pgStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.reminders.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{store: s, tx: tx}, nil
}

type pgTx struct {
	store *pgStore
	tx    pgx.Tx
}

func (t *pgTx) ReminderByToken(ctx context.Context, tok string) (reminder.Reminder, bool, error) {
	rem, err := t.store.reminders.GetByTokenForUpdate(ctx, t.tx, tok)
	if err != nil {
		if reminder.IsNotFound(err) {
			return reminder.Reminder{}, false, nil
		}
		return reminder.Reminder{}, false, err
	}
	return rem, true, nil
}

func (t *pgTx) RecordResponse(ctx context.Context, id string, resp reminder.Response, status reminder.Status) (bool, error) {
	return t.store.reminders.RecordResponse(ctx, t.tx, id, resp, status)
}

func (t *pgTx) InsertEvent(ctx context.Context, ev outbox.Event) error {
	return t.store.outbox.Insert(ctx, t.tx, ev)
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
