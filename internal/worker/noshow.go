package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mindwell/booking-api/internal/repository"
	"github.com/mindwell/booking-api/pkg/metrics"
)

// NoShowSweeper flips stale active bookings to no_show. A booking is
// stale when its session date is before today; running the sweep twice
// is harmless because swept rows are no longer active.
type NoShowSweeper struct {
	repo    repository.BookingRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewNoShowSweeper(repo repository.BookingRepository, m *metrics.Metrics) *NoShowSweeper {
	return &NoShowSweeper{repo: repo, metrics: m, now: time.Now}
}

func (s *NoShowSweeper) Name() string { return "no_show_sweep" }

// Run marks every pending or confirmed booking dated before the local
// start of today as a no-show.
func (s *NoShowSweeper) Run(ctx context.Context) error {
	start := s.now()
	cutoff := startOfDay(start)

	swept, err := s.repo.MarkNoShows(ctx, cutoff)
	if err != nil {
		if s.metrics != nil {
			s.metrics.JobFailures.WithLabelValues(s.Name()).Inc()
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.NoShowsSwept.Add(float64(swept))
		s.metrics.JobDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
	}
	log.Info().Int64("swept", swept).Time("cutoff", cutoff).Msg("no-show sweep complete")
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
