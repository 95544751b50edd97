package booking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mindwell/booking-api/internal/handler"
	"github.com/mindwell/booking-api/internal/middleware"
	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/repository"
	"github.com/mindwell/booking-api/internal/service/booking"
	apperrors "github.com/mindwell/booking-api/pkg/errors"
	"github.com/mindwell/booking-api/pkg/metrics"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc      *booking.Service
	userRepo repository.UserRepository
	metrics  *metrics.Metrics
}

func NewHandler(svc *booking.Service, userRepo repository.UserRepository, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, userRepo: userRepo, metrics: m}
}

// Create books a session for the authenticated patient.
func (h *Handler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.CreateBookingRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patient, err := h.userRepo.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	b, err := h.svc.CreateBooking(c.Request.Context(), patient, &req)
	if err != nil {
		if h.metrics != nil {
			if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.ErrConflict {
				h.metrics.BookingConflicts.Inc()
			}
		}
		c.Error(err)
		return
	}

	if h.metrics != nil {
		h.metrics.BookingsCreated.Inc()
		h.metrics.BookingsByStatus.WithLabelValues(string(b.Status)).Inc()
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	b, err := h.svc.GetBooking(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !canAccess(claims.UserID, claims.Role, b) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not a participant of this booking"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(b))
}

// List returns the caller's bookings. Patients see their own, therapists
// the ones booked with them, admins everything.
func (h *Handler) List(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	filters := &model.BookingFilters{}
	switch claims.Role {
	case model.RoleTherapist:
		filters.TherapistID = claims.UserID
	case model.RoleAdmin:
	default:
		filters.PatientID = claims.UserID
	}

	if status := c.Query("status"); status != "" {
		s := model.BookingStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("unknown status filter"))
			return
		}
		filters.Status = s
	}
	if from := c.Query("from"); from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from date"))
			return
		}
		filters.StartDate = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to date"))
			return
		}
		filters.EndDate = t
	}

	bookings, err := h.svc.ListBookings(c.Request.Context(), filters)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

// Update applies a status transition or notes change. Therapists and
// admins only; cancellation goes through the cancel endpoint.
func (h *Handler) Update(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	existing, err := h.svc.GetBooking(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if claims.Role != model.RoleAdmin && existing.TherapistID != claims.UserID {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("only the session's therapist may update the booking"))
		return
	}

	var req model.UpdateBookingRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	b, err := h.svc.UpdateBooking(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(b))
}

// Cancel cancels a booking on behalf of either participant.
func (h *Handler) Cancel(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	existing, err := h.svc.GetBooking(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !canAccess(claims.UserID, claims.Role, existing) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not a participant of this booking"))
		return
	}

	var req model.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := handler.BindAndValidate(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
	}

	b, err := h.svc.CancelBooking(c.Request.Context(), id, claims.UserID, req.Reason)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(b))
}

func canAccess(userID uuid.UUID, role string, b *model.Booking) bool {
	return role == model.RoleAdmin || b.PatientID == userID || b.TherapistID == userID
}
