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

func (r *therapistRepository) Create(ctx context.Context, therapist *model.Therapist) error {
	query := `
		INSERT INTO therapists (
			id, name, email, specialization, bio, weekly_availability,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	therapist.CreatedAt = time.Now()
	therapist.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		therapist.ID,
		therapist.Name,
		therapist.Email,
		therapist.Specialization,
		therapist.Bio,
		therapist.WeeklyAvailability,
		therapist.CreatedAt,
		therapist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create therapist: %w", err)
	}
	return nil
}

func (r *therapistRepository) Get(ctx context.Context, id uuid.UUID) (*model.Therapist, error) {
	query := `
		SELECT id, name, email, specialization, bio, weekly_availability,
			   created_at, updated_at
		FROM therapists
		WHERE id = $1
	`
	var therapist model.Therapist
	err := r.db.GetContext(ctx, &therapist, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get therapist: %w", err)
	}
	return &therapist, nil
}

func (r *therapistRepository) List(ctx context.Context) ([]*model.Therapist, error) {
	query := `
		SELECT id, name, email, specialization, bio, weekly_availability,
			   created_at, updated_at
		FROM therapists
		ORDER BY name ASC
	`
	var therapists []*model.Therapist
	err := r.db.SelectContext(ctx, &therapists, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}
	return therapists, nil
}

func (r *therapistRepository) Update(ctx context.Context, therapist *model.Therapist) error {
	query := `
		UPDATE therapists
		SET name = $1, specialization = $2, bio = $3, updated_at = $4
		WHERE id = $5
	`
	therapist.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		therapist.Name,
		therapist.Specialization,
		therapist.Bio,
		therapist.UpdatedAt,
		therapist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update therapist: %w", err)
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

func (r *therapistRepository) UpdateAvailability(ctx context.Context, id uuid.UUID, week model.WeeklySchedule) error {
	query := `
		UPDATE therapists
		SET weekly_availability = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, week, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
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
