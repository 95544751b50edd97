package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mindwell/booking-api/internal/config"
	"github.com/mindwell/booking-api/internal/handler"
	authhandler "github.com/mindwell/booking-api/internal/handler/auth"
	bookinghandler "github.com/mindwell/booking-api/internal/handler/booking"
	notehandler "github.com/mindwell/booking-api/internal/handler/note"
	therapisthandler "github.com/mindwell/booking-api/internal/handler/therapist"
	"github.com/mindwell/booking-api/internal/middleware"
	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *authhandler.Handler
	Therapist *therapisthandler.Handler
	Booking   *bookinghandler.Handler
	Note      *notehandler.Handler
	Health    *handler.HealthHandler
}

// New assembles the gin engine with the full middleware chain and all
// routes.
func New(cfg *config.Config, h Handlers, jwtSvc middleware.TokenValidator, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS())
	r.Use(middleware.Timeout(time.Duration(cfg.Server.TimeoutSeconds) * time.Second))
	r.Use(middleware.RateLimiter(middleware.RateLimiterConfig{
		RPS:   float64(cfg.Server.RateLimitRPS),
		Burst: cfg.Server.RateLimitBurst,
	}))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// public
	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.GET("/therapists", h.Therapist.List)
	v1.GET("/therapists/:id", h.Therapist.Get)
	v1.GET("/therapists/:id/availability", h.Therapist.GetAvailability)

	// authenticated
	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(jwtSvc))
	{
		authed.PUT("/therapists/:id/availability",
			middleware.RequireRole(model.RoleTherapist, model.RoleAdmin),
			h.Therapist.UpdateAvailability)

		authed.POST("/bookings", middleware.RequireRole(model.RolePatient, model.RoleAdmin), h.Booking.Create)
		authed.GET("/bookings", h.Booking.List)
		authed.GET("/bookings/:id", h.Booking.Get)
		authed.PUT("/bookings/:id", h.Booking.Update)
		authed.POST("/bookings/:id/cancel", h.Booking.Cancel)

		authed.POST("/bookings/:id/notes",
			middleware.RequireRole(model.RoleTherapist),
			h.Note.Create)
		authed.GET("/bookings/:id/notes", h.Note.ListForBooking)
		authed.GET("/notes/:id", h.Note.Get)
		authed.PUT("/notes/:id",
			middleware.RequireRole(model.RoleTherapist),
			h.Note.Update)
	}

	return r
}
