package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell/booking-api/internal/model"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSlotConflict is returned when a booking insert loses the
	// overlap check against concurrent or existing bookings.
	ErrSlotConflict = errors.New("slot conflict")
	// ErrDuplicateEmail is returned on unique-constraint violations for
	// user email.
	ErrDuplicateEmail = errors.New("email already registered")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	TherapistRepository interface {
		Create(ctx context.Context, therapist *model.Therapist) error
		Get(ctx context.Context, id uuid.UUID) (*model.Therapist, error)
		List(ctx context.Context) ([]*model.Therapist, error)
		Update(ctx context.Context, therapist *model.Therapist) error
		UpdateAvailability(ctx context.Context, id uuid.UUID, week model.WeeklySchedule) error
	}

	BookingRepository interface {
		// CreateIfNoConflict inserts the booking inside a transaction
		// that first locks and overlap-checks the therapist's active
		// bookings for that date. Returns ErrSlotConflict on overlap.
		CreateIfNoConflict(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		Update(ctx context.Context, booking *model.Booking) error
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		// ListActiveForDay returns pending and confirmed bookings for
		// one therapist on one calendar day.
		ListActiveForDay(ctx context.Context, therapistID uuid.UUID, date time.Time) ([]*model.Booking, error)
		// MarkNoShows flips active bookings dated strictly before the
		// cutoff to no_show and reports how many rows changed.
		MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error)
		// ListDueReminders returns confirmed, un-reminded bookings on
		// the given date joined with participant contact details.
		ListDueReminders(ctx context.Context, date time.Time) ([]*model.BookingReminder, error)
		MarkReminded(ctx context.Context, id uuid.UUID) error
	}

	SessionNoteRepository interface {
		Create(ctx context.Context, note *model.SessionNote) error
		Get(ctx context.Context, id uuid.UUID) (*model.SessionNote, error)
		Update(ctx context.Context, note *model.SessionNote) error
		ListForBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.SessionNote, error)
	}
)
