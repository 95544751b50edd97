package therapist

import (
	"context"
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

type fakeTherapistRepo struct {
	therapists map[uuid.UUID]*model.Therapist
	updates    int
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

func (f *fakeTherapistRepo) List(_ context.Context) ([]*model.Therapist, error) {
	out := make([]*model.Therapist, 0, len(f.therapists))
	for _, t := range f.therapists {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTherapistRepo) Update(_ context.Context, t *model.Therapist) error {
	if _, ok := f.therapists[t.ID]; !ok {
		return repository.ErrNotFound
	}
	f.therapists[t.ID] = t
	return nil
}

func (f *fakeTherapistRepo) UpdateAvailability(_ context.Context, id uuid.UUID, week model.WeeklySchedule) error {
	t, ok := f.therapists[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.WeeklyAvailability = week
	f.updates++
	return nil
}

type fakeBookingRepo struct {
	active []*model.Booking
}

func (f *fakeBookingRepo) CreateIfNoConflict(context.Context, *model.Booking) error { return nil }

func (f *fakeBookingRepo) Get(context.Context, uuid.UUID) (*model.Booking, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeBookingRepo) Update(context.Context, *model.Booking) error { return nil }

func (f *fakeBookingRepo) List(context.Context, *model.BookingFilters) ([]*model.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) ListActiveForDay(context.Context, uuid.UUID, time.Time) ([]*model.Booking, error) {
	return f.active, nil
}

func (f *fakeBookingRepo) MarkNoShows(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeBookingRepo) ListDueReminders(context.Context, time.Time) ([]*model.BookingReminder, error) {
	return nil, nil
}

func (f *fakeBookingRepo) MarkReminded(context.Context, uuid.UUID) error { return nil }

func nextWeekday(day time.Weekday) time.Time {
	d := time.Now().AddDate(0, 0, 1)
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}

func newTestService(active []*model.Booking) (*Service, *fakeTherapistRepo, uuid.UUID) {
	id := uuid.New()
	repo := &fakeTherapistRepo{therapists: map[uuid.UUID]*model.Therapist{
		id: {
			Base:               model.Base{ID: id},
			Name:               "Dr. Reyes",
			WeeklyAvailability: model.WeeklySchedule{Week: schedule.DefaultWeek()},
		},
	}}
	return NewService(repo, &fakeBookingRepo{active: active}), repo, id
}

func TestGetAvailabilityFullDay(t *testing.T) {
	svc, _, id := newTestService(nil)

	resp, err := svc.GetAvailability(context.Background(), id, nextWeekday(time.Monday))
	require.NoError(t, err)
	assert.True(t, resp.Available)
	require.NotNil(t, resp.WorkingHours)
	assert.Equal(t, "09:00", resp.WorkingHours.Start)
	assert.Equal(t, "17:00", resp.WorkingHours.End)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}, resp.AvailableSlots)
}

func TestGetAvailabilityExcludesBooked(t *testing.T) {
	svc, _, id := newTestService([]*model.Booking{
		{SessionTime: "10:00", DurationMinutes: 60, Status: model.BookingStatusConfirmed},
		{SessionTime: "13:30", DurationMinutes: 60, Status: model.BookingStatusPending},
	})

	resp, err := svc.GetAvailability(context.Background(), id, nextWeekday(time.Tuesday))
	require.NoError(t, err)
	assert.NotContains(t, resp.AvailableSlots, "10:00")
	// 13:30-14:30 overlaps both the 13:00 and 14:00 slots
	assert.NotContains(t, resp.AvailableSlots, "13:00")
	assert.NotContains(t, resp.AvailableSlots, "14:00")
	assert.Contains(t, resp.AvailableSlots, "09:00")
	assert.Contains(t, resp.AvailableSlots, "15:00")
}

func TestGetAvailabilityDayOff(t *testing.T) {
	svc, _, id := newTestService(nil)

	resp, err := svc.GetAvailability(context.Background(), id, nextWeekday(time.Sunday))
	require.NoError(t, err)
	assert.False(t, resp.Available)
	assert.Nil(t, resp.WorkingHours)
	assert.Empty(t, resp.AvailableSlots)
	assert.Equal(t, "Sunday", resp.DayOfWeek)
}

func TestGetAvailabilityUnknownTherapist(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.GetAvailability(context.Background(), uuid.New(), nextWeekday(time.Monday))
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestUpdateAvailabilityValidation(t *testing.T) {
	svc, repo, id := newTestService(nil)

	week := schedule.DefaultWeek()
	week[time.Monday] = schedule.DayHours{Start: "17:00", End: "09:00", Available: true}
	err := svc.UpdateAvailability(context.Background(), id, week)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Zero(t, repo.updates)

	err = svc.UpdateAvailability(context.Background(), id, schedule.DefaultWeek())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updates)
}

func TestUpdateAvailabilityInvalidatesCache(t *testing.T) {
	svc, _, id := newTestService(nil)

	// prime the cache
	_, err := svc.GetTherapist(context.Background(), id)
	require.NoError(t, err)

	week := schedule.DefaultWeek()
	week[time.Saturday] = schedule.DayHours{Start: "10:00", End: "14:00", Available: true}
	require.NoError(t, svc.UpdateAvailability(context.Background(), id, week))

	got, err := svc.GetTherapist(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.WeeklyAvailability.Week[time.Saturday].Available)
}
