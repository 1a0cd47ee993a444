package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/citaplan/citaplan/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Specialty classifies a medical discipline. High-privacy specialties make
// downstream messaging withhold the visit reason.
type Specialty struct {
	Code        string
	Name        string
	HighPrivacy bool
}

func (r *Repository) UpsertSpecialty(ctx context.Context, s Specialty) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO specialties (code, name, high_privacy)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name,
			high_privacy = EXCLUDED.high_privacy,
			updated_at = now()
	`, strings.ToLower(strings.TrimSpace(s.Code)), s.Name, s.HighPrivacy)
	return err
}

func (r *Repository) GetSpecialty(ctx context.Context, code string) (Specialty, error) {
	var s Specialty
	err := r.pool.QueryRow(ctx, `
		SELECT code, name, high_privacy
		FROM specialties
		WHERE code = $1
	`, strings.ToLower(strings.TrimSpace(code))).Scan(&s.Code, &s.Name, &s.HighPrivacy)
	return s, err
}

func (r *Repository) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, high_privacy
		FROM specialties
		ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Specialty
	for rows.Next() {
		var s Specialty
		if err := rows.Scan(&s.Code, &s.Name, &s.HighPrivacy); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type Doctor struct {
	ID         string
	Name       string
	Specialty  string
	LocationID string
	Active     bool
	CreatedAt  time.Time
}

func (r *Repository) CreateDoctor(ctx context.Context, d Doctor) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, name, specialty, location_id, active)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5)
	`, id, d.Name, strings.ToLower(strings.TrimSpace(d.Specialty)), d.LocationID, d.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) GetDoctor(ctx context.Context, id string) (Doctor, error) {
	var d Doctor
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, specialty, COALESCE(location_id::text, ''), active, created_at
		FROM doctors
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Specialty, &d.LocationID, &d.Active, &d.CreatedAt)
	return d, err
}

func (r *Repository) ListDoctors(ctx context.Context, specialty string, limit int) ([]Doctor, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, specialty, COALESCE(location_id::text, ''), active, created_at
		FROM doctors
		WHERE ($1 = '' OR specialty = $1)
		ORDER BY name
		LIMIT $2
	`, strings.ToLower(strings.TrimSpace(specialty)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.LocationID, &d.Active, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ReminderOffsets returns a doctor's reminder lead times in minutes, falling
// back to the clinic default when the doctor has no override.
func (r *Repository) ReminderOffsets(ctx context.Context, doctorID string, clinicDefault []int) ([]int, error) {
	var offsets []int
	err := r.pool.QueryRow(ctx, `
		SELECT reminder_offsets_minutes
		FROM doctor_policies
		WHERE doctor_id = $1
	`, doctorID).Scan(&offsets)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return clinicDefault, nil
		}
		return nil, err
	}
	if len(offsets) == 0 {
		return clinicDefault, nil
	}
	return offsets, nil
}

func (r *Repository) UpsertPolicy(ctx context.Context, doctorID string, offsetsMins []int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor_policies (doctor_id, reminder_offsets_minutes)
		VALUES ($1, $2)
		ON CONFLICT (doctor_id) DO UPDATE
		SET reminder_offsets_minutes = EXCLUDED.reminder_offsets_minutes,
			updated_at = now()
	`, doctorID, offsetsMins)
	return err
}
