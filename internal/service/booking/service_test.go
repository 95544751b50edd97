package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/repository"
	"github.com/mindwell/booking-api/internal/schedule"
	apperrors "github.com/mindwell/booking-api/pkg/errors"
)

// fakeBookingRepo mirrors the conflict semantics of the postgres
// implementation in memory.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*model.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (f *fakeBookingRepo) CreateIfNoConflict(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	proposed, err := b.Interval()
	if err != nil {
		return err
	}
	for _, existing := range f.bookings {
		if existing.TherapistID != b.TherapistID || !existing.SessionDate.Equal(b.SessionDate) {
			continue
		}
		if !existing.Status.IsActive() {
			continue
		}
		iv, err := existing.Interval()
		if err != nil {
			return err
		}
		if schedule.Overlaps(proposed, iv) {
			return repository.ErrSlotConflict
		}
	}

	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	clone := *b
	f.bookings[b.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) Get(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) Update(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[b.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *b
	f.bookings[b.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) List(_ context.Context, _ *model.BookingFilters) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Booking, 0, len(f.bookings))
	for _, b := range f.bookings {
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeBookingRepo) ListActiveForDay(_ context.Context, therapistID uuid.UUID, date time.Time) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.TherapistID == therapistID && b.SessionDate.Equal(date) && b.Status.IsActive() {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) MarkNoShows(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.Status.IsActive() && b.SessionDate.Before(cutoff) {
			b.Status = model.BookingStatusNoShow
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) ListDueReminders(_ context.Context, _ time.Time) ([]*model.BookingReminder, error) {
	return nil, nil
}

func (f *fakeBookingRepo) MarkReminded(_ context.Context, _ uuid.UUID) error {
	return nil
}

type fakeTherapistRepo struct {
	therapists map[uuid.UUID]*model.Therapist
}

func (f *fakeTherapistRepo) Create(_ context.Context, t *model.Therapist) error {
	f.therapists[t.ID] = t
	return nil
}

func (f *fakeTherapistRepo) Get(_ context.Context, id uuid.UUID) (*model.Therapist, error) {
	t, ok := f.therapists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTherapistRepo) List(_ context.Context) ([]*model.Therapist, error) { return nil, nil }

func (f *fakeTherapistRepo) Update(_ context.Context, _ *model.Therapist) error { return nil }

func (f *fakeTherapistRepo) UpdateAvailability(_ context.Context, _ uuid.UUID, _ model.WeeklySchedule) error {
	return nil
}

func newTestService() (*Service, *fakeBookingRepo, *model.Therapist, *model.User) {
	bookingRepo := newFakeBookingRepo()
	therapist := &model.Therapist{
		Base:               model.Base{ID: uuid.New()},
		Name:               "Dr. Reyes",
		Email:              "reyes@example.com",
		WeeklyAvailability: model.WeeklySchedule{Week: schedule.DefaultWeek()},
	}
	therapistRepo := &fakeTherapistRepo{therapists: map[uuid.UUID]*model.Therapist{therapist.ID: therapist}}
	patient := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "pat@example.com",
		Name:  "Pat",
		Role:  model.RolePatient,
	}
	svc := NewService(bookingRepo, therapistRepo, nil, nil)
	return svc, bookingRepo, therapist, patient
}

// nextWeekday returns the next date falling on the given weekday.
func nextWeekday(day time.Weekday) string {
	d := time.Now().AddDate(0, 0, 1)
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func TestCreateBooking(t *testing.T) {
	svc, _, therapist, patient := newTestService()

	booking, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: nextWeekday(time.Monday),
		SessionTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, 60, booking.DurationMinutes, "duration defaults to one slot")
	assert.Equal(t, model.SessionTypeVideo, booking.SessionType)
	assert.Equal(t, patient.ID, booking.PatientID)
}

func TestCreateBookingUnavailableDay(t *testing.T) {
	svc, _, therapist, patient := newTestService()

	_, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: nextWeekday(time.Sunday),
		SessionTime: "10:00",
	})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateBookingOutsideWorkingHours(t *testing.T) {
	svc, _, therapist, patient := newTestService()

	for _, tt := range []string{"08:00", "16:30", "17:00"} {
		_, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
			TherapistID: therapist.ID.String(),
			SessionDate: nextWeekday(time.Tuesday),
			SessionTime: tt,
		})
		require.Error(t, err, tt)
		appErr, ok := apperrors.As(err)
		require.True(t, ok, tt)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code, tt)
	}
}

func TestCreateBookingMalformedInput(t *testing.T) {
	svc, _, therapist, patient := newTestService()

	_, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: "06/02/2025",
		SessionTime: "10:00",
	})
	assert.Error(t, err)

	_, err = svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: nextWeekday(time.Monday),
		SessionTime: "ten o'clock",
	})
	assert.Error(t, err)
}

func TestCreateBookingConflict(t *testing.T) {
	svc, _, therapist, patient := newTestService()
	date := nextWeekday(time.Wednesday)

	_, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: date,
		SessionTime: "10:00",
	})
	require.NoError(t, err)

	// identical start time
	_, err = svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: date,
		SessionTime: "10:00",
	})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	// different start, overlapping interval
	_, err = svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID:     therapist.ID.String(),
		SessionDate:     date,
		SessionTime:     "09:30",
		DurationMinutes: 60,
	})
	require.Error(t, err)
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	// adjacent slot is fine
	_, err = svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: date,
		SessionTime: "11:00",
	})
	assert.NoError(t, err)
}

func TestUpdateBookingTransitions(t *testing.T) {
	svc, _, therapist, patient := newTestService()

	booking, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: nextWeekday(time.Thursday),
		SessionTime: "13:00",
	})
	require.NoError(t, err)

	confirmed := model.BookingStatusConfirmed
	updated, err := svc.UpdateBooking(context.Background(), booking.ID, &model.UpdateBookingRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, updated.Status)

	completed := model.BookingStatusCompleted
	updated, err = svc.UpdateBooking(context.Background(), booking.ID, &model.UpdateBookingRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, updated.Status)

	// completed is terminal
	_, err = svc.UpdateBooking(context.Background(), booking.ID, &model.UpdateBookingRequest{Status: &confirmed})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestUpdateBookingRejectsCancelStatus(t *testing.T) {
	svc, _, therapist, patient := newTestService()

	booking, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: nextWeekday(time.Friday),
		SessionTime: "14:00",
	})
	require.NoError(t, err)

	cancelled := model.BookingStatusCancelled
	_, err = svc.UpdateBooking(context.Background(), booking.ID, &model.UpdateBookingRequest{Status: &cancelled})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCancelBooking(t *testing.T) {
	svc, _, therapist, patient := newTestService()

	booking, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: nextWeekday(time.Monday),
		SessionTime: "15:00",
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(context.Background(), booking.ID, patient.ID, "feeling better")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, patient.ID, *cancelled.CancelledBy)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "feeling better", *cancelled.CancelReason)

	// cancelling again is rejected
	_, err = svc.CancelBooking(context.Background(), booking.ID, patient.ID, "")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCancelCompletedBookingRejected(t *testing.T) {
	svc, _, therapist, patient := newTestService()

	booking, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: nextWeekday(time.Tuesday),
		SessionTime: "09:00",
	})
	require.NoError(t, err)

	completed := model.BookingStatusCompleted
	_, err = svc.UpdateBooking(context.Background(), booking.ID, &model.UpdateBookingRequest{Status: &completed})
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), booking.ID, patient.ID, "")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCancelledSlotBecomesBookable(t *testing.T) {
	svc, _, therapist, patient := newTestService()
	date := nextWeekday(time.Wednesday)

	booking, err := svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: date,
		SessionTime: "10:00",
	})
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), booking.ID, patient.ID, "")
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), patient, &model.CreateBookingRequest{
		TherapistID: therapist.ID.String(),
		SessionDate: date,
		SessionTime: "10:00",
	})
	assert.NoError(t, err, "cancelled bookings no longer occupy their slot")
}
