package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/citaplan/citaplan/libs/db"
)

const reminderColumns = `id::text, COALESCE(appointment_id::text, ''), COALESCE(waitlist_entry_id::text, ''), kind, trigger_name,
	doctor_id::text, doctor_name, specialty, high_privacy, reason, start_time, duration_minutes,
	COALESCE(patient_id::text, ''), patient_name, patient_email, patient_phone,
	offered_start, alternative_slots, token, token_expires_at, status, attempts, COALESCE(sent_channel, ''),
	patient_response, responded_at, created_at`

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *Repository) Create(ctx context.Context, rem *Reminder) (string, error) {
	id := uuid.NewString()
	alt, err := json.Marshal(rfc3339Slice(rem.AlternativeSlots))
	if err != nil {
		return "", err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO reminders
			(id, appointment_id, waitlist_entry_id, kind, trigger_name,
			 doctor_id, doctor_name, specialty, high_privacy, reason, start_time, duration_minutes,
			 patient_id, patient_name, patient_email, patient_phone,
			 offered_start, alternative_slots, token, token_expires_at, status, attempts)
		VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, '')::uuid, $4, $5,
			$6, $7, $8, $9, $10, $11, $12,
			NULLIF($13, '')::uuid, $14, $15, $16,
			$17, $18, $19, $20, $21, '[]'::jsonb)
	`, id, rem.AppointmentID, rem.WaitlistEntryID, rem.Kind, rem.Trigger,
		rem.DoctorID, rem.DoctorName, rem.Specialty, rem.HighPrivacy, rem.Reason, rem.StartTime, rem.DurationMinutes,
		rem.PatientID, rem.PatientName, rem.PatientEmail, rem.PatientPhone,
		rem.OfferedStart, alt, rem.Token, rem.TokenExpiresAt, rem.Status)
	if err != nil {
		return "", err
	}
	rem.ID = id
	return id, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Reminder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id)
	return scanReminder(row)
}

// GetByTokenForUpdate loads and locks the record behind a response token.
func (r *Repository) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (Reminder, error) {
	row := tx.QueryRow(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE token = $1 FOR UPDATE`, token)
	return scanReminder(row)
}

// FinalizeDispatch stores the attempt trail and the dispatch outcome. A fast
// patient click can record a response before this write lands; the attempt
// trail is stored either way, but the status only moves off processing, never
// over a recorded response.
func (r *Repository) FinalizeDispatch(ctx context.Context, id string, attempts []Attempt, sentChannel Channel, status Status) error {
	raw, err := json.Marshal(attempts)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE reminders
		SET attempts = $2,
			sent_channel = NULLIF($3, ''),
			status = CASE WHEN status = 'processing' THEN $4 ELSE status END,
			updated_at = now()
		WHERE id = $1
	`, id, raw, string(sentChannel), status)
	return err
}

// RecordResponse writes the patient's answer. The WHERE clause keeps the
// write single-shot: a row that already carries a response is untouched.
func (r *Repository) RecordResponse(ctx context.Context, tx pgx.Tx, id string, resp Response, status Status) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE reminders
		SET patient_response = $2, responded_at = now(), status = $3, updated_at = now()
		WHERE id = $1 AND patient_response IS NULL
	`, id, resp, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// HasDispatched reports whether a reminder for the appointment and trigger
// already exists, so redelivered due events do not double-send.
func (r *Repository) HasDispatched(ctx context.Context, appointmentID string, trigger Trigger) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reminders
			WHERE appointment_id = $1 AND kind = 'reminder' AND trigger_name = $2
		)
	`, appointmentID, trigger).Scan(&exists)
	return exists, err
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func scanReminder(row pgx.Row) (Reminder, error) {
	var rem Reminder
	var attemptsRaw, altRaw []byte
	var sentChannel string
	var resp *string
	err := row.Scan(
		&rem.ID,
		&rem.AppointmentID,
		&rem.WaitlistEntryID,
		&rem.Kind,
		&rem.Trigger,
		&rem.DoctorID,
		&rem.DoctorName,
		&rem.Specialty,
		&rem.HighPrivacy,
		&rem.Reason,
		&rem.StartTime,
		&rem.DurationMinutes,
		&rem.PatientID,
		&rem.PatientName,
		&rem.PatientEmail,
		&rem.PatientPhone,
		&rem.OfferedStart,
		&altRaw,
		&rem.Token,
		&rem.TokenExpiresAt,
		&rem.Status,
		&attemptsRaw,
		&sentChannel,
		&resp,
		&rem.RespondedAt,
		&rem.CreatedAt,
	)
	if err != nil {
		return Reminder{}, err
	}
	rem.SentChannel = Channel(sentChannel)
	if resp != nil {
		pr := Response(*resp)
		rem.PatientResponse = &pr
	}
	if len(attemptsRaw) > 0 {
		if err := json.Unmarshal(attemptsRaw, &rem.Attempts); err != nil {
			return Reminder{}, err
		}
	}
	if len(altRaw) > 0 {
		var alts []string
		if err := json.Unmarshal(altRaw, &alts); err != nil {
			return Reminder{}, err
		}
		for _, s := range alts {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				continue
			}
			rem.AlternativeSlots = append(rem.AlternativeSlots, t)
		}
	}
	return rem, nil
}

func rfc3339Slice(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.UTC().Format(time.RFC3339))
	}
	return out
}
