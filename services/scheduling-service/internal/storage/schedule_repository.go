package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/citaplan/citaplan/libs/db"
	"github.com/citaplan/citaplan/services/scheduling-service/internal/model"
)

// ScheduleRepository stores the recurring availability windows and ad-hoc
// time blocks that shape a doctor's bookable day.
type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

func (r *ScheduleRepository) AvailabilityWindows(ctx context.Context, doctorID string, day time.Weekday) ([]model.AvailabilityWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id::text, day_of_week, start_minute, end_minute, active
		FROM availability_windows
		WHERE doctor_id = $1 AND day_of_week = $2 AND active
		ORDER BY start_minute ASC
	`, doctorID, int(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []model.AvailabilityWindow
	for rows.Next() {
		var w model.AvailabilityWindow
		var dow int
		if err := rows.Scan(&w.DoctorID, &dow, &w.StartMinute, &w.EndMinute, &w.Active); err != nil {
			return nil, err
		}
		w.DayOfWeek = time.Weekday(dow)
		windows = append(windows, w)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return windows, nil
}

// ReplaceWindows swaps a doctor's full weekly schedule in one transaction.
// The schedule is edited as a whole from the admin side, so partial updates
// are not offered.
func (r *ScheduleRepository) ReplaceWindows(ctx context.Context, doctorID string, windows []model.AvailabilityWindow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM availability_windows WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}
	for _, w := range windows {
		_, err := tx.Exec(ctx, `
			INSERT INTO availability_windows (doctor_id, day_of_week, start_minute, end_minute, active)
			VALUES ($1, $2, $3, $4, $5)
		`, doctorID, int(w.DayOfWeek), w.StartMinute, w.EndMinute, w.Active)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ScheduleRepository) TimeBlocksInRange(ctx context.Context, doctorID string, from, to time.Time) ([]model.TimeBlock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, doctor_id::text, start_time, end_time, COALESCE(reason, '')
		FROM time_blocks
		WHERE doctor_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []model.TimeBlock
	for rows.Next() {
		var b model.TimeBlock
		if err := rows.Scan(&b.ID, &b.DoctorID, &b.Start, &b.End, &b.Reason); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return blocks, nil
}

func (r *ScheduleRepository) CreateTimeBlock(ctx context.Context, block model.TimeBlock) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO time_blocks (id, doctor_id, start_time, end_time, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, id, block.DoctorID, block.Start, block.End, block.Reason)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ScheduleRepository) DeleteTimeBlock(ctx context.Context, doctorID, blockID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM time_blocks WHERE id = $1 AND doctor_id = $2
	`, blockID, doctorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
