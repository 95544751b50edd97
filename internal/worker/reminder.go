package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mindwell/booking-api/internal/email"
	"github.com/mindwell/booking-api/internal/repository"
	"github.com/mindwell/booking-api/pkg/metrics"
)

const reminderDateLayout = "2006-01-02"

// ReminderSender emails both participants of every confirmed booking
// happening tomorrow, once. A booking is only marked reminded after the
// patient email goes out, so transient SMTP failures get retried on the
// next run.
type ReminderSender struct {
	repo     repository.BookingRepository
	emailSvc email.Service
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewReminderSender(repo repository.BookingRepository, emailSvc email.Service, m *metrics.Metrics) *ReminderSender {
	return &ReminderSender{repo: repo, emailSvc: emailSvc, metrics: m, now: time.Now}
}

func (s *ReminderSender) Name() string { return "booking_reminders" }

func (s *ReminderSender) Run(ctx context.Context) error {
	start := s.now()
	tomorrow := startOfDay(start).AddDate(0, 0, 1)

	due, err := s.repo.ListDueReminders(ctx, tomorrow)
	if err != nil {
		if s.metrics != nil {
			s.metrics.JobFailures.WithLabelValues(s.Name()).Inc()
		}
		return err
	}

	var sent int
	for _, r := range due {
		date := r.SessionDate.Format(reminderDateLayout)

		if err := s.emailSvc.SendBookingReminder(ctx, r.PatientEmail, r.PatientName,
			r.TherapistName, date, r.SessionTime); err != nil {
			log.Error().Err(err).Str("booking_id", r.ID.String()).Msg("failed to send patient reminder")
			continue
		}

		if err := s.emailSvc.SendBookingReminder(ctx, r.TherapistEmail, r.TherapistName,
			r.PatientName, date, r.SessionTime); err != nil {
			log.Error().Err(err).Str("booking_id", r.ID.String()).Msg("failed to send therapist reminder")
		}

		if err := s.repo.MarkReminded(ctx, r.ID); err != nil {
			log.Error().Err(err).Str("booking_id", r.ID.String()).Msg("failed to mark booking reminded")
			continue
		}
		sent++
		if s.metrics != nil {
			s.metrics.RemindersSent.Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.JobDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
	}
	log.Info().Int("due", len(due)).Int("sent", sent).Msg("reminder run complete")
	return nil
}
