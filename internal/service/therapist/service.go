package therapist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/repository"
	"github.com/mindwell/booking-api/internal/schedule"
	apperrors "github.com/mindwell/booking-api/pkg/errors"
)

const (
	scheduleCacheTTL     = 5 * time.Minute
	scheduleCacheCleanup = 10 * time.Minute
)

type Service struct {
	repo        repository.TherapistRepository
	bookingRepo repository.BookingRepository
	cache       *gocache.Cache
}

func NewService(repo repository.TherapistRepository, bookingRepo repository.BookingRepository) *Service {
	return &Service{
		repo:        repo,
		bookingRepo: bookingRepo,
		cache:       gocache.New(scheduleCacheTTL, scheduleCacheCleanup),
	}
}

func (s *Service) GetTherapist(ctx context.Context, id uuid.UUID) (*model.Therapist, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.Therapist), nil
	}

	therapist, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("therapist", err)
		}
		return nil, fmt.Errorf("failed to get therapist: %w", err)
	}

	s.cache.SetDefault(id.String(), therapist)
	return therapist, nil
}

func (s *Service) ListTherapists(ctx context.Context) ([]*model.Therapist, error) {
	therapists, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}
	return therapists, nil
}

func (s *Service) UpdateProfile(ctx context.Context, therapist *model.Therapist) error {
	if err := s.repo.Update(ctx, therapist); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NotFound("therapist", err)
		}
		return fmt.Errorf("failed to update therapist: %w", err)
	}
	s.cache.Delete(therapist.ID.String())
	return nil
}

// UpdateAvailability replaces the weekly schedule after validating it
// and drops the cached profile so the next availability query sees the
// new hours.
func (s *Service) UpdateAvailability(ctx context.Context, id uuid.UUID, week schedule.Week) error {
	if err := week.Validate(); err != nil {
		return apperrors.BadRequest("invalid weekly availability", err)
	}

	if err := s.repo.UpdateAvailability(ctx, id, model.WeeklySchedule{Week: week}); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NotFound("therapist", err)
		}
		return fmt.Errorf("failed to update availability: %w", err)
	}

	s.cache.Delete(id.String())
	return nil
}

// GetAvailability resolves the therapist's working window for the date
// and returns the open slots after removing everything already booked.
func (s *Service) GetAvailability(ctx context.Context, id uuid.UUID, date time.Time) (*model.AvailabilityResponse, error) {
	therapist, err := s.GetTherapist(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &model.AvailabilityResponse{
		Date:      date.Format("2006-01-02"),
		DayOfWeek: date.Weekday().String(),
	}

	day, ok := schedule.ResolveDay(therapist.WeeklyAvailability.Week, date)
	if !ok {
		return resp, nil
	}

	bookings, err := s.bookingRepo.ListActiveForDay(ctx, id, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	booked := make([]schedule.Interval, 0, len(bookings))
	for _, b := range bookings {
		iv, err := b.Interval()
		if err != nil {
			return nil, fmt.Errorf("booking %s has corrupt session time: %w", b.ID, err)
		}
		booked = append(booked, iv)
	}

	slots, err := schedule.AvailableSlots(day, booked)
	if err != nil {
		return nil, fmt.Errorf("failed to compute slots: %w", err)
	}

	resp.Available = true
	resp.WorkingHours = &model.WorkingHours{Start: day.Start, End: day.End}
	resp.AvailableSlots = slots
	return resp, nil
}
