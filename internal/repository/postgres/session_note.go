package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/repository"
)

func (r *sessionNoteRepository) Create(ctx context.Context, note *model.SessionNote) error {
	query := `
		INSERT INTO session_notes (
			id, booking_id, therapist_id, content, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	note.ID = uuid.New()
	note.CreatedAt = time.Now()
	note.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		note.ID,
		note.BookingID,
		note.TherapistID,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session note: %w", err)
	}
	return nil
}

func (r *sessionNoteRepository) Get(ctx context.Context, id uuid.UUID) (*model.SessionNote, error) {
	query := `
		SELECT id, booking_id, therapist_id, content, created_at, updated_at
		FROM session_notes
		WHERE id = $1
	`
	var note model.SessionNote
	err := r.db.GetContext(ctx, &note, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session note: %w", err)
	}
	return &note, nil
}

func (r *sessionNoteRepository) Update(ctx context.Context, note *model.SessionNote) error {
	query := `
		UPDATE session_notes
		SET content = $1, updated_at = $2
		WHERE id = $3
	`
	note.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, note.Content, note.UpdatedAt, note.ID)
	if err != nil {
		return fmt.Errorf("failed to update session note: %w", err)
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

func (r *sessionNoteRepository) ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.SessionNote, error) {
	query := `
		SELECT id, booking_id, therapist_id, content, created_at, updated_at
		FROM session_notes
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`
	var notes []*model.SessionNote
	err := r.db.SelectContext(ctx, &notes, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session notes: %w", err)
	}
	return notes, nil
}
