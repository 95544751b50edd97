package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell/booking-api/internal/model"
)

type fakeBookingRepo struct {
	bookings  map[uuid.UUID]*model.Booking
	due       []*model.BookingReminder
	reminded  []uuid.UUID
	listErr   error
	markedErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (f *fakeBookingRepo) add(date time.Time, status model.BookingStatus) *model.Booking {
	b := &model.Booking{
		Base:            model.Base{ID: uuid.New()},
		SessionDate:     date,
		SessionTime:     "10:00",
		DurationMinutes: 60,
		Status:          status,
	}
	f.bookings[b.ID] = b
	return b
}

func (f *fakeBookingRepo) CreateIfNoConflict(context.Context, *model.Booking) error { return nil }

func (f *fakeBookingRepo) Get(context.Context, uuid.UUID) (*model.Booking, error) { return nil, nil }

func (f *fakeBookingRepo) Update(context.Context, *model.Booking) error { return nil }

func (f *fakeBookingRepo) List(context.Context, *model.BookingFilters) ([]*model.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) ListActiveForDay(context.Context, uuid.UUID, time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) MarkNoShows(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, b := range f.bookings {
		if b.Status.IsActive() && b.SessionDate.Before(cutoff) {
			b.Status = model.BookingStatusNoShow
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) ListDueReminders(context.Context, time.Time) ([]*model.BookingReminder, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due, nil
}

func (f *fakeBookingRepo) MarkReminded(_ context.Context, id uuid.UUID) error {
	if f.markedErr != nil {
		return f.markedErr
	}
	f.reminded = append(f.reminded, id)
	return nil
}

type fakeEmailService struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakeEmailService) SendBookingReminder(_ context.Context, to, _, _, _, _ string) error {
	if f.failFor[to] {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeEmailService) SendBookingConfirmation(_ context.Context, _, _, _, _, _ string) error {
	return nil
}

func (f *fakeEmailService) SendBookingCancellation(_ context.Context, _, _, _, _, _ string) error {
	return nil
}

func (f *fakeEmailService) SendCustom(_ context.Context, _, _, _ string) error { return nil }

func fixedNow() time.Time {
	return time.Date(2025, 6, 10, 2, 0, 0, 0, time.Local)
}

func day(offset int) time.Time {
	return time.Date(2025, 6, 10+offset, 0, 0, 0, 0, time.Local)
}

func TestNoShowSweep(t *testing.T) {
	repo := newFakeBookingRepo()
	stalePending := repo.add(day(-1), model.BookingStatusPending)
	staleConfirmed := repo.add(day(-2), model.BookingStatusConfirmed)
	today := repo.add(day(0), model.BookingStatusPending)
	future := repo.add(day(1), model.BookingStatusConfirmed)
	cancelled := repo.add(day(-1), model.BookingStatusCancelled)
	completed := repo.add(day(-1), model.BookingStatusCompleted)

	sweeper := NewNoShowSweeper(repo, nil)
	sweeper.now = fixedNow

	require.NoError(t, sweeper.Run(context.Background()))

	assert.Equal(t, model.BookingStatusNoShow, stalePending.Status)
	assert.Equal(t, model.BookingStatusNoShow, staleConfirmed.Status)
	assert.Equal(t, model.BookingStatusPending, today.Status, "today's sessions have not happened yet")
	assert.Equal(t, model.BookingStatusConfirmed, future.Status)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, model.BookingStatusCompleted, completed.Status)
}

func TestNoShowSweepIdempotent(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.add(day(-1), model.BookingStatusPending)

	sweeper := NewNoShowSweeper(repo, nil)
	sweeper.now = fixedNow

	require.NoError(t, sweeper.Run(context.Background()))

	n, err := repo.MarkNoShows(context.Background(), day(0))
	require.NoError(t, err)
	assert.Zero(t, n, "second sweep finds nothing to mark")
}

func reminderFor(id uuid.UUID) *model.BookingReminder {
	return &model.BookingReminder{
		Booking: model.Booking{
			Base:        model.Base{ID: id},
			SessionDate: day(1),
			SessionTime: "10:00",
			Status:      model.BookingStatusConfirmed,
		},
		PatientName:    "Pat",
		PatientEmail:   "pat@example.com",
		TherapistName:  "Dr. Reyes",
		TherapistEmail: "reyes@example.com",
	}
}

func TestReminderRun(t *testing.T) {
	repo := newFakeBookingRepo()
	id := uuid.New()
	repo.due = []*model.BookingReminder{reminderFor(id)}
	mail := &fakeEmailService{}

	sender := NewReminderSender(repo, mail, nil)
	sender.now = fixedNow

	require.NoError(t, sender.Run(context.Background()))

	assert.Equal(t, []string{"pat@example.com", "reyes@example.com"}, mail.sent)
	assert.Equal(t, []uuid.UUID{id}, repo.reminded)
}

func TestReminderPatientEmailFailureRetriesNextRun(t *testing.T) {
	repo := newFakeBookingRepo()
	id := uuid.New()
	repo.due = []*model.BookingReminder{reminderFor(id)}
	mail := &fakeEmailService{failFor: map[string]bool{"pat@example.com": true}}

	sender := NewReminderSender(repo, mail, nil)
	sender.now = fixedNow

	require.NoError(t, sender.Run(context.Background()))

	assert.Empty(t, repo.reminded, "booking stays unreminded so the next run retries")
	assert.Empty(t, mail.sent)
}

func TestReminderListFailure(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.listErr = errors.New("db down")

	sender := NewReminderSender(repo, &fakeEmailService{}, nil)
	sender.now = fixedNow

	assert.Error(t, sender.Run(context.Background()))
}
