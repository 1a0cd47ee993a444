package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/citaplan/citaplan/libs/db"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

type WaitlistRepository struct {
	pool *db.Pool
}

func NewWaitlistRepository(pool *db.Pool) *WaitlistRepository {
	return &WaitlistRepository{pool: pool}
}

func (r *WaitlistRepository) Create(ctx context.Context, e *model.WaitlistEntry) (string, error) {
	id := uuid.NewString()
	days := make([]int, 0, len(e.PreferredDays))
	for _, d := range e.PreferredDays {
		days = append(days, int(d))
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO waitlist_entries
			(id, doctor_id, patient_id, patient_name, patient_email, patient_phone,
			 estimated_duration_minutes, preferred_days, preferred_time_start, preferred_time_end, priority, status)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11, 'waiting')
	`, id, e.DoctorID, e.PatientID, e.PatientName, e.PatientEmail, e.PatientPhone,
		e.EstimatedDurationMinutes, days, e.PreferredTimeStart, e.PreferredTimeEnd, e.Priority)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *WaitlistRepository) Get(ctx context.Context, id string) (model.WaitlistEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, doctor_id::text, COALESCE(patient_id::text, ''), patient_name, patient_email, patient_phone,
			estimated_duration_minutes, preferred_days, preferred_time_start, preferred_time_end, priority, status, offered_start, created_at
		FROM waitlist_entries
		WHERE id = $1
	`, id)

	var e model.WaitlistEntry
	var days []int
	err := row.Scan(
		&e.ID,
		&e.DoctorID,
		&e.PatientID,
		&e.PatientName,
		&e.PatientEmail,
		&e.PatientPhone,
		&e.EstimatedDurationMinutes,
		&days,
		&e.PreferredTimeStart,
		&e.PreferredTimeEnd,
		&e.Priority,
		&e.Status,
		&e.OfferedStart,
		&e.CreatedAt,
	)
	if err != nil {
		return model.WaitlistEntry{}, err
	}
	for _, d := range days {
		e.PreferredDays = append(e.PreferredDays, time.Weekday(d))
	}
	return e, nil
}

func (r *WaitlistRepository) ListByDoctor(ctx context.Context, doctorID string, status model.WaitlistStatus) ([]model.WaitlistEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, doctor_id::text, COALESCE(patient_id::text, ''), patient_name, patient_email, patient_phone,
			estimated_duration_minutes, preferred_days, preferred_time_start, preferred_time_end, priority, status, offered_start, created_at
		FROM waitlist_entries
		WHERE doctor_id = $1 AND status = $2
		ORDER BY created_at ASC
	`, doctorID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.WaitlistEntry
	for rows.Next() {
		var e model.WaitlistEntry
		var days []int
		if err := rows.Scan(
			&e.ID,
			&e.DoctorID,
			&e.PatientID,
			&e.PatientName,
			&e.PatientEmail,
			&e.PatientPhone,
			&e.EstimatedDurationMinutes,
			&days,
			&e.PreferredTimeStart,
			&e.PreferredTimeEnd,
			&e.Priority,
			&e.Status,
			&e.OfferedStart,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		for _, d := range days {
			e.PreferredDays = append(e.PreferredDays, time.Weekday(d))
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

// MarkNotified transitions entries from waiting to notified and records the
// offered slot. Entries that raced into another status are left alone; the
// returned ids are the ones actually transitioned.
func (r *WaitlistRepository) MarkNotified(ctx context.Context, tx pgx.Tx, ids []string, offeredStart time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := tx.Query(ctx, `
		UPDATE waitlist_entries
		SET status = 'notified', offered_start = $2, updated_at = now()
		WHERE id = ANY($1) AND status = 'waiting'
		RETURNING id::text
	`, ids, offeredStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updated []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}
	return updated, rows.Err()
}

// ExpireLapsedOffers flips notified entries whose offered slot start has
// passed to expired, so an unanswered offer does not hold the entry in
// notified forever.
func (r *WaitlistRepository) ExpireLapsedOffers(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE waitlist_entries
		SET status = 'expired', updated_at = now()
		WHERE status = 'notified' AND offered_start < now()
	`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Transition is the in-transaction form of UpdateStatus.
func (r *WaitlistRepository) Transition(ctx context.Context, tx pgx.Tx, id string, to model.WaitlistStatus, allowedFrom []model.WaitlistStatus) (bool, error) {
	from := make([]string, 0, len(allowedFrom))
	for _, s := range allowedFrom {
		from = append(from, string(s))
	}
	tag, err := tx.Exec(ctx, `
		UPDATE waitlist_entries
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`, id, to, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateStatus applies a guarded single-entry transition.
func (r *WaitlistRepository) UpdateStatus(ctx context.Context, id string, to model.WaitlistStatus, allowedFrom []model.WaitlistStatus) (bool, error) {
	from := make([]string, 0, len(allowedFrom))
	for _, s := range allowedFrom {
		from = append(from, string(s))
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE waitlist_entries
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`, id, to, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
