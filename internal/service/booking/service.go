package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mindwell/booking-api/internal/email"
	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/repository"
	"github.com/mindwell/booking-api/internal/schedule"
	apperrors "github.com/mindwell/booking-api/pkg/errors"
	"github.com/mindwell/booking-api/pkg/messaging"
)

// EventChannel is the broker channel booking events are published on.
const EventChannel = "booking.events"

// Event types
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo          repository.BookingRepository
	therapistRepo repository.TherapistRepository
	emailSvc      email.Service
	broker        messaging.Broker
}

func NewService(repo repository.BookingRepository, therapistRepo repository.TherapistRepository,
	emailSvc email.Service, broker messaging.Broker) *Service {
	return &Service{
		repo:          repo,
		therapistRepo: therapistRepo,
		emailSvc:      emailSvc,
		broker:        broker,
	}
}

// CreateBooking validates the request against the therapist's schedule
// and inserts the booking through the transactional conflict check.
// New bookings always start out pending.
func (s *Service) CreateBooking(ctx context.Context, patient *model.User, req *model.CreateBookingRequest) (*model.Booking, error) {
	therapistID, err := uuid.Parse(req.TherapistID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid therapist ID", err)
	}

	date, err := time.ParseInLocation(dateLayout, req.SessionDate, time.Local)
	if err != nil {
		return nil, apperrors.BadRequest("invalid session date, expected YYYY-MM-DD", err)
	}

	start, err := schedule.ParseClock(req.SessionTime)
	if err != nil {
		return nil, apperrors.BadRequest("invalid session time, expected HH:MM", err)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = schedule.SlotDurationMinutes
	}

	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = model.SessionTypeVideo
	}

	therapist, err := s.therapistRepo.Get(ctx, therapistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("therapist", err)
		}
		return nil, fmt.Errorf("failed to get therapist: %w", err)
	}

	day, ok := schedule.ResolveDay(therapist.WeeklyAvailability.Week, date)
	if !ok {
		return nil, apperrors.BadRequest("therapist is not available on this day", nil)
	}

	open, err := schedule.ParseClock(day.Start)
	if err != nil {
		return nil, fmt.Errorf("therapist schedule corrupt: %w", err)
	}
	close, err := schedule.ParseClock(day.End)
	if err != nil {
		return nil, fmt.Errorf("therapist schedule corrupt: %w", err)
	}
	if start < open || start+duration > close {
		return nil, apperrors.BadRequest("session falls outside working hours", nil)
	}

	booking := &model.Booking{
		PatientID:       patient.ID,
		TherapistID:     therapistID,
		SessionDate:     date,
		SessionTime:     req.SessionTime,
		DurationMinutes: duration,
		Status:          model.BookingStatusPending,
		SessionType:     sessionType,
		Notes:           req.Notes,
	}

	if err := s.repo.CreateIfNoConflict(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			return nil, apperrors.Conflict("time slot is already booked", err)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publish(ctx, EventBookingCreated, booking)
	s.notifyConfirmation(patient, therapist, booking)

	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("booking", err)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *Service) ListBookings(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	bookings, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBooking applies a status transition and/or a notes change.
// Cancellation has its own entry point so the cancellation audit fields
// are always recorded; a status update to cancelled is rejected here.
func (s *Service) UpdateBooking(ctx context.Context, id uuid.UUID, req *model.UpdateBookingRequest) (*model.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		next := *req.Status
		if !next.Valid() {
			return nil, apperrors.BadRequest(fmt.Sprintf("unknown status %q", next), nil)
		}
		if next == model.BookingStatusCancelled {
			return nil, apperrors.BadRequest("use the cancel endpoint to cancel a booking", nil)
		}
		if !model.CanTransition(booking.Status, next) {
			return nil, apperrors.Conflict(
				fmt.Sprintf("cannot transition booking from %s to %s", booking.Status, next), nil)
		}
		booking.Status = next
	}

	if req.Notes != nil {
		booking.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.publish(ctx, EventBookingUpdated, booking)
	return booking, nil
}

// CancelBooking moves an active booking to cancelled and records when,
// by whom and why. Completed and already-cancelled bookings are
// immutable.
func (s *Service) CancelBooking(ctx context.Context, id, actorID uuid.UUID, reason string) (*model.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case model.BookingStatusCancelled:
		return nil, apperrors.Conflict("booking is already cancelled", nil)
	case model.BookingStatusCompleted:
		return nil, apperrors.Conflict("cannot cancel a completed booking", nil)
	}
	if !model.CanTransition(booking.Status, model.BookingStatusCancelled) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("cannot cancel booking in status %s", booking.Status), nil)
	}

	now := time.Now()
	booking.Status = model.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.CancelledBy = &actorID
	if reason != "" {
		booking.CancelReason = &reason
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.publish(ctx, EventBookingCancelled, booking)
	return booking, nil
}

func (s *Service) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: eventType, Payload: booking}
	if err := s.broker.Publish(ctx, EventChannel, msg); err != nil {
		log.Error().Err(err).Str("event", eventType).Str("booking_id", booking.ID.String()).
			Msg("failed to publish booking event")
	}
}

func (s *Service) notifyConfirmation(patient *model.User, therapist *model.Therapist, booking *model.Booking) {
	if s.emailSvc == nil {
		return
	}
	go func() {
		err := s.emailSvc.SendBookingConfirmation(context.Background(),
			patient.Email, patient.Name, therapist.Name,
			booking.SessionDate.Format(dateLayout), booking.SessionTime)
		if err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID.String()).
				Msg("failed to send booking confirmation")
		}
	}()
}
