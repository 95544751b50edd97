package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/mindwell/booking-api/internal/schedule"
)

// WeeklySchedule wraps schedule.Week so it can be stored in a jsonb
// column.
type WeeklySchedule struct {
	schedule.Week
}

func (w WeeklySchedule) Value() (driver.Value, error) {
	return json.Marshal(w.Week)
}

func (w *WeeklySchedule) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, &w.Week)
	case string:
		return json.Unmarshal([]byte(v), &w.Week)
	case nil:
		w.Week = nil
		return nil
	default:
		return fmt.Errorf("unsupported type for weekly schedule: %T", src)
	}
}

// Therapist carries the practitioner profile and the weekly recurring
// availability used by the slot generator. The row shares its id with
// the owning user account.
type Therapist struct {
	Base
	Name               string         `json:"name" db:"name"`
	Email              string         `json:"email" db:"email"`
	Specialization     string         `json:"specialization" db:"specialization"`
	Bio                string         `json:"bio,omitempty" db:"bio"`
	WeeklyAvailability WeeklySchedule `json:"weekly_availability" db:"weekly_availability"`
}

// UpdateAvailabilityRequest replaces a therapist's weekly schedule.
type UpdateAvailabilityRequest struct {
	WeeklyAvailability schedule.Week `json:"weekly_availability" validate:"required"`
}

// WorkingHours is the open/close window reported alongside availability.
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityResponse is the payload for the availability query. When
// Available is false the slot list and working hours are omitted.
type AvailabilityResponse struct {
	Available      bool          `json:"available"`
	Date           string        `json:"date"`
	DayOfWeek      string        `json:"day_of_week"`
	WorkingHours   *WorkingHours `json:"working_hours,omitempty"`
	AvailableSlots []string      `json:"available_slots,omitempty"`
}
