package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	otelx "github.com/citaplan/citaplan/libs/otel"
)

// Job is one reminder trigger waiting to fire. The idempotency key is
// (appointment_id, trigger), so replayed booking events cannot double-book a
// reminder.
type Job struct {
	ID              int64
	IdempotencyKey  string
	AppointmentID   string
	Trigger         string
	DoctorID        string
	DoctorName      string
	Specialty       string
	HighPrivacy     bool
	Reason          string
	PatientID       string
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	StartTime       time.Time
	DurationMinutes int
	RemindAt        time.Time
	Traceparent     string
	Tracestate      string
	Attempts        int
	MaxAttempts     int
	NextRunAt       time.Time
}

// Key builds the idempotency key for an appointment trigger.
func Key(appointmentID, trigger string) string {
	return fmt.Sprintf("%s:%s", appointmentID, trigger)
}

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, job Job) error {
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := tx.Exec(ctx, `
		INSERT INTO reminder_jobs
			(idempotency_key, appointment_id, trigger_name, doctor_id, doctor_name, specialty, high_privacy, reason,
			 patient_id, patient_name, patient_email, patient_phone,
			 start_time, duration_minutes, remind_at, next_run_at, traceparent, tracestate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, $10, $11, $12, $13, $14, $15, $15, $16, $17)
		ON CONFLICT (idempotency_key) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    remind_at = EXCLUDED.remind_at,
		    next_run_at = EXCLUDED.next_run_at,
		    status = 'pending',
		    attempts = 0,
		    updated_at = now()
		WHERE reminder_jobs.status IN ('pending', 'cancelled')
	`, job.IdempotencyKey, job.AppointmentID, job.Trigger, job.DoctorID, job.DoctorName, job.Specialty, job.HighPrivacy, job.Reason,
		job.PatientID, job.PatientName, job.PatientEmail, job.PatientPhone,
		job.StartTime, job.DurationMinutes, job.RemindAt, traceparent, tracestate)
	return err
}

// CancelPending drops an appointment's unfired triggers, used when the
// appointment is cancelled or moved.
func (r *Repository) CancelPending(ctx context.Context, tx pgx.Tx, appointmentID string) (int, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE reminder_jobs
		SET status = 'cancelled', updated_at = now()
		WHERE appointment_id = $1 AND status = 'pending'
	`, appointmentID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) FetchDue(ctx context.Context, tx pgx.Tx, limit int) ([]Job, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, idempotency_key, appointment_id, trigger_name, doctor_id::text, doctor_name, specialty, high_privacy, reason,
			COALESCE(patient_id::text, ''), patient_name, patient_email, patient_phone,
			start_time, duration_minutes, remind_at, traceparent, tracestate, attempts, max_attempts, next_run_at
		FROM reminder_jobs
		WHERE status = 'pending' AND next_run_at <= now()
		ORDER BY next_run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(
			&j.ID, &j.IdempotencyKey, &j.AppointmentID, &j.Trigger, &j.DoctorID, &j.DoctorName, &j.Specialty, &j.HighPrivacy, &j.Reason,
			&j.PatientID, &j.PatientName, &j.PatientEmail, &j.PatientPhone,
			&j.StartTime, &j.DurationMinutes, &j.RemindAt, &j.Traceparent, &j.Tracestate, &j.Attempts, &j.MaxAttempts, &j.NextRunAt,
		); err != nil {
			return nil, err
		}
		due = append(due, j)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return due, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE reminder_jobs
		SET status = 'processed', updated_at = now()
		WHERE id = ANY($1)
	`, ids)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, tx pgx.Tx, id int64, attempts int, maxAttempts int, nextRunAt time.Time, lastError string) error {
	status := "pending"
	if attempts >= maxAttempts {
		status = "failed"
	}
	_, err := tx.Exec(ctx, `
		UPDATE reminder_jobs
		SET attempts = $2,
		    status = $3,
		    next_run_at = $4,
		    last_error = $5,
		    updated_at = now()
		WHERE id = $1
	`, id, attempts, status, nextRunAt, lastError)
	return err
}
