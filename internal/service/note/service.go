package note

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/repository"
	apperrors "github.com/mindwell/booking-api/pkg/errors"
)

type Service struct {
	repo        repository.SessionNoteRepository
	bookingRepo repository.BookingRepository
}

func NewService(repo repository.SessionNoteRepository, bookingRepo repository.BookingRepository) *Service {
	return &Service{repo: repo, bookingRepo: bookingRepo}
}

// CreateNote attaches a note to a booking. Only the therapist the
// booking belongs to may write notes for it.
func (s *Service) CreateNote(ctx context.Context, bookingID, therapistID uuid.UUID, content string) (*model.SessionNote, error) {
	booking, err := s.bookingRepo.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("booking", err)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.TherapistID != therapistID {
		return nil, apperrors.Forbidden("notes may only be written by the session's therapist", nil)
	}

	note := &model.SessionNote{
		BookingID:   bookingID,
		TherapistID: therapistID,
		Content:     content,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

func (s *Service) GetNote(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*model.SessionNote, error) {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("note", err)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if !isAdmin && note.TherapistID != requesterID {
		return nil, apperrors.Forbidden("notes are private to the authoring therapist", nil)
	}
	return note, nil
}

func (s *Service) UpdateNote(ctx context.Context, id, therapistID uuid.UUID, content string) (*model.SessionNote, error) {
	note, err := s.GetNote(ctx, id, therapistID, false)
	if err != nil {
		return nil, err
	}

	note.Content = content
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

func (s *Service) ListForBooking(ctx context.Context, bookingID, requesterID uuid.UUID, isAdmin bool) ([]*model.SessionNote, error) {
	booking, err := s.bookingRepo.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("booking", err)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if !isAdmin && booking.TherapistID != requesterID {
		return nil, apperrors.Forbidden("notes are private to the session's therapist", nil)
	}

	notes, err := s.repo.ListForBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
