package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/repository"
	"github.com/mindwell/booking-api/internal/schedule"
)

const bookingColumns = `
	id, patient_id, therapist_id, session_date, session_time,
	duration_minutes, status, session_type, notes,
	cancel_reason, cancelled_by, cancelled_at, reminder_sent,
	created_at, updated_at
`

// CreateIfNoConflict locks the therapist's active bookings for the
// session date, re-runs the interval overlap check against them, and
// inserts. Running the check and the insert in one transaction closes
// the window where two concurrent requests could both pass the check.
func (r *bookingRepository) CreateIfNoConflict(ctx context.Context, booking *model.Booking) error {
	proposed, err := booking.Interval()
	if err != nil {
		return fmt.Errorf("invalid session time: %w", err)
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		lockQuery := `
			SELECT session_time, duration_minutes
			FROM bookings
			WHERE therapist_id = $1
			AND session_date = $2
			AND status IN ('pending', 'confirmed')
			FOR UPDATE
		`
		var existing []struct {
			SessionTime     string `db:"session_time"`
			DurationMinutes int    `db:"duration_minutes"`
		}
		if err := tx.SelectContext(ctx, &existing, lockQuery, booking.TherapistID, booking.SessionDate); err != nil {
			return fmt.Errorf("failed to lock existing bookings: %w", err)
		}

		for _, e := range existing {
			start, err := schedule.ParseClock(e.SessionTime)
			if err != nil {
				return fmt.Errorf("stored session time corrupt: %w", err)
			}
			if schedule.Overlaps(proposed, schedule.Interval{Start: start, End: start + e.DurationMinutes}) {
				return repository.ErrSlotConflict
			}
		}

		insertQuery := `
			INSERT INTO bookings (
				id, patient_id, therapist_id, session_date, session_time,
				duration_minutes, status, session_type, notes, reminder_sent,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		booking.ID = uuid.New()
		booking.CreatedAt = time.Now()
		booking.UpdatedAt = time.Now()

		if _, err := tx.ExecContext(ctx, insertQuery,
			booking.ID,
			booking.PatientID,
			booking.TherapistID,
			booking.SessionDate,
			booking.SessionTime,
			booking.DurationMinutes,
			booking.Status,
			booking.SessionType,
			booking.Notes,
			booking.ReminderSent,
			booking.CreatedAt,
			booking.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, notes = $2, cancel_reason = $3, cancelled_by = $4,
			cancelled_at = $5, reminder_sent = $6, updated_at = $7
		WHERE id = $8
	`
	booking.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		booking.Status,
		booking.Notes,
		booking.CancelReason,
		booking.CancelledBy,
		booking.CancelledAt,
		booking.ReminderSent,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.TherapistID != uuid.Nil {
		query += fmt.Sprintf(" AND therapist_id = $%d", argCount)
		args = append(args, filters.TherapistID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND session_date >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND session_date <= $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY session_date ASC, session_time ASC"

	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListActiveForDay(ctx context.Context, therapistID uuid.UUID, date time.Time) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE therapist_id = $1
		AND session_date = $2
		AND status IN ('pending', 'confirmed')
		ORDER BY session_time ASC
	`
	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, query, therapistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for day: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'no_show', updated_at = $1
		WHERE status IN ('pending', 'confirmed')
		AND session_date < $2
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark no-shows: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *bookingRepository) ListDueReminders(ctx context.Context, date time.Time) ([]*model.BookingReminder, error) {
	query := `
		SELECT b.id, b.patient_id, b.therapist_id, b.session_date, b.session_time,
			   b.duration_minutes, b.status, b.session_type, b.notes,
			   b.cancel_reason, b.cancelled_by, b.cancelled_at, b.reminder_sent,
			   b.created_at, b.updated_at,
			   p.name AS patient_name, p.email AS patient_email,
			   t.name AS therapist_name, t.email AS therapist_email
		FROM bookings b
		JOIN users p ON p.id = b.patient_id
		JOIN therapists t ON t.id = b.therapist_id
		WHERE b.session_date = $1
		AND b.status = 'confirmed'
		AND b.reminder_sent = false
		ORDER BY b.session_time ASC
	`
	var reminders []*model.BookingReminder
	err := r.db.SelectContext(ctx, &reminders, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return reminders, nil
}

func (r *bookingRepository) MarkReminded(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE bookings
		SET reminder_sent = true, updated_at = $1
		WHERE id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to mark reminded: %w", err)
	}
	return nil
}
