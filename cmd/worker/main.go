package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mindwell/booking-api/internal/config"
	"github.com/mindwell/booking-api/internal/email"
	"github.com/mindwell/booking-api/internal/repository/postgres"
	"github.com/mindwell/booking-api/internal/worker"
	"github.com/mindwell/booking-api/pkg/logger"
	"github.com/mindwell/booking-api/pkg/metrics"
)

// job is a named unit of scheduled work.
type job interface {
	Name() string
	Run(ctx context.Context) error
}

func main() {
	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})
	log.Logger = *appLogger.ZL()

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	bookingRepo := postgres.NewBookingRepository(db)

	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	} else {
		appLogger.Warn("smtp not configured, reminders will not be sent")
	}

	m := metrics.New(cfg.Worker.MetricsNamespace)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	schedule := func(spec string, j job) {
		_, err := scheduler.AddFunc(spec, func() {
			if err := j.Run(ctx); err != nil {
				appLogger.Error(err, "job failed", "job", j.Name())
			}
		})
		if err != nil {
			appLogger.Fatal(err, "invalid cron expression", "job", j.Name(), "spec", spec)
		}
		appLogger.Info("job scheduled", "job", j.Name(), "spec", spec)
	}

	schedule(cfg.Worker.NoShowSweepCron, worker.NewNoShowSweeper(bookingRepo, m))
	if emailSvc != nil {
		schedule(cfg.Worker.ReminderCron, worker.NewReminderSender(bookingRepo, emailSvc, m))
	}

	scheduler.Start()
	defer scheduler.Stop()

	// health and metrics endpoints for the worker process
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status":"unavailable"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ready"}`)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.HealthPort),
		Handler: mux,
	}
	go func() {
		appLogger.Info("worker health server started", "port", cfg.Worker.HealthPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(err, "health server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down worker")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
