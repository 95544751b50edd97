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

	"github.com/rs/zerolog/log"

	"github.com/mindwell/booking-api/internal/config"
	"github.com/mindwell/booking-api/internal/email"
	"github.com/mindwell/booking-api/internal/handler"
	authhandler "github.com/mindwell/booking-api/internal/handler/auth"
	bookinghandler "github.com/mindwell/booking-api/internal/handler/booking"
	notehandler "github.com/mindwell/booking-api/internal/handler/note"
	therapisthandler "github.com/mindwell/booking-api/internal/handler/therapist"
	"github.com/mindwell/booking-api/internal/repository/postgres"
	"github.com/mindwell/booking-api/internal/router"
	"github.com/mindwell/booking-api/internal/schedule"
	authservice "github.com/mindwell/booking-api/internal/service/auth"
	bookingservice "github.com/mindwell/booking-api/internal/service/booking"
	noteservice "github.com/mindwell/booking-api/internal/service/note"
	therapistservice "github.com/mindwell/booking-api/internal/service/therapist"
	pkgauth "github.com/mindwell/booking-api/pkg/auth"
	"github.com/mindwell/booking-api/pkg/logger"
	"github.com/mindwell/booking-api/pkg/messaging"
	redisbroker "github.com/mindwell/booking-api/pkg/messaging/redis"
	"github.com/mindwell/booking-api/pkg/metrics"
)

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
	if cfg.JWT.Secret == "" {
		appLogger.Fatal(errors.New("jwt.secret is required"), "invalid config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// the broker is optional: without Redis the API still serves, it
	// just stops publishing booking events
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, appLogger.ZL())
		if err != nil {
			appLogger.Error(err, "redis unavailable, continuing without event publishing")
			broker = nil
		} else {
			defer broker.Close()
		}
	}

	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	}

	userRepo := postgres.NewUserRepository(db)
	therapistRepo := postgres.NewTherapistRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	noteRepo := postgres.NewSessionNoteRepository(db)

	jwtSvc := pkgauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	defaultWeek := func() schedule.Week {
		return schedule.WeekdayWeek(cfg.Scheduling.DefaultDayStart, cfg.Scheduling.DefaultDayEnd)
	}

	authSvc := authservice.NewService(userRepo, therapistRepo, jwtSvc, cfg.JWT.Expiry(), defaultWeek)
	therapistSvc := therapistservice.NewService(therapistRepo, bookingRepo)
	bookingSvc := bookingservice.NewService(bookingRepo, therapistRepo, emailSvc, broker)
	noteSvc := noteservice.NewService(noteRepo, bookingRepo)

	m := metrics.New("booking_api")

	engine := router.New(cfg, router.Handlers{
		Auth:      authhandler.NewHandler(authSvc),
		Therapist: therapisthandler.NewHandler(therapistSvc),
		Booking:   bookinghandler.NewHandler(bookingSvc, userRepo, m),
		Note:      notehandler.NewHandler(noteSvc),
		Health:    handler.NewHealthHandler(db),
	}, jwtSvc, m)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error(err, "forced shutdown")
	}
}
