package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/citaplan/citaplan/libs/db"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

const apptColumns = `id::text, doctor_id::text, doctor_name, COALESCE(patient_id::text, ''), patient_name, patient_email, patient_phone,
	COALESCE(location_id::text, ''), specialty, reason, start_time, duration_minutes, status,
	COALESCE(cancel_reason, ''), cancelled_at, created_at`

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Create inserts a new appointment. The appointments table carries an
// exclusion constraint on (doctor_id, location_id, tstzrange(start, end)) for
// occupying statuses, so concurrent bookings of the same interval surface as
// IsSlotTaken errors here rather than racing past the advisory check.
func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO appointments
			(id, doctor_id, doctor_name, patient_id, patient_name, patient_email, patient_phone,
			 location_id, specialty, reason, start_time, duration_minutes, status, idempotency_key)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, NULLIF($8, '')::uuid, $9, $10, $11, $12, $13, NULLIF($14, ''))
	`, id, appt.DoctorID, appt.DoctorName, appt.PatientID, appt.PatientName, appt.PatientEmail, appt.PatientPhone,
		appt.LocationID, appt.Specialty, appt.Reason, appt.Start, appt.DurationMinutes, appt.Status,
		appt.IdempotencyKey)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

// GetByIdempotencyKey resolves a replayed booking request to the appointment
// it created the first time.
func (r *AppointmentRepository) GetByIdempotencyKey(ctx context.Context, key string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE idempotency_key = $1`, key)
	return scanAppointment(row)
}

func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
	return scanAppointment(row)
}

// UpdateStatus applies a guarded status transition: the row changes only if
// the current status is one of allowedFrom. Returns false when the guard
// rejected the transition.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, to model.AppointmentStatus, allowedFrom []model.AppointmentStatus) (bool, error) {
	from := make([]string, 0, len(allowedFrom))
	for _, s := range allowedFrom {
		from = append(from, string(s))
	}
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`, id, to, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AppointmentRepository) Cancel(ctx context.Context, tx pgx.Tx, id, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancel_reason = $2,
			updated_at = now()
		WHERE id = $1
		RETURNING cancelled_at
	`, id, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

// Move shifts an appointment to a new start time. The exclusion constraint
// still applies, so moving onto an occupied interval fails with IsSlotTaken.
func (r *AppointmentRepository) Move(ctx context.Context, tx pgx.Tx, id string, newStart time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET start_time = $2, updated_at = now()
		WHERE id = $1
	`, id, newStart)
	return err
}

// AppointmentsInRange lists a doctor's appointments overlapping [from, to),
// chronologically. It serves both the availability engine and conflict
// detection, so cancelled rows are included and filtered by status upstream.
func (r *AppointmentRepository) AppointmentsInRange(ctx context.Context, doctorID string, from, to time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE doctor_id = $1
			AND start_time < $3
			AND start_time + duration_minutes * interval '1 minute' > $2
		ORDER BY start_time ASC
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var cancelledAt *time.Time
	err := row.Scan(
		&appt.ID,
		&appt.DoctorID,
		&appt.DoctorName,
		&appt.PatientID,
		&appt.PatientName,
		&appt.PatientEmail,
		&appt.PatientPhone,
		&appt.LocationID,
		&appt.Specialty,
		&appt.Reason,
		&appt.Start,
		&appt.DurationMinutes,
		&appt.Status,
		&appt.CancelReason,
		&cancelledAt,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.CancelledAt = cancelledAt
	return appt, nil
}

// IsSlotTaken reports whether err is the exclusion-constraint violation
// raised when two occupying appointments would overlap.
func IsSlotTaken(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// IsDuplicateKey reports a unique violation, raised when the same
// idempotency key is inserted twice.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
