package therapist

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mindwell/booking-api/internal/handler"
	"github.com/mindwell/booking-api/internal/middleware"
	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/service/therapist"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *therapist.Service
}

func NewHandler(svc *therapist.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(c *gin.Context) {
	therapists, err := h.svc.ListTherapists(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(therapists))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid therapist ID"))
		return
	}

	t, err := h.svc.GetTherapist(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(t))
}

// GetAvailability returns the free one-hour slots for a therapist on the
// date given by the ?date=YYYY-MM-DD query parameter.
func (h *Handler) GetAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid therapist ID"))
		return
	}

	dateParam := c.Query("date")
	if dateParam == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date query parameter is required"))
		return
	}
	date, err := time.ParseInLocation(dateLayout, dateParam, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	availability, err := h.svc.GetAvailability(c.Request.Context(), id, date)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(availability))
}

// UpdateAvailability replaces the therapist's weekly schedule. Only the
// therapist themself or an admin may do this.
func (h *Handler) UpdateAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid therapist ID"))
		return
	}

	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}
	if claims.UserID != id && claims.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("cannot modify another therapist's schedule"))
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := handler.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.svc.UpdateAvailability(c.Request.Context(), id, req.WeeklyAvailability); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"weekly_availability": req.WeeklyAvailability}))
}
