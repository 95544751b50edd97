package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/mindwell/booking-api/internal/schedule"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// Session types
const (
	SessionTypeVideo    = "video"
	SessionTypeInPerson = "in_person"
)

// validTransitions is the booking lifecycle: pending -> confirmed ->
// completed, with cancellation possible from pending or confirmed. The
// no-show transition is reserved for the sweep job.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
}

// CanTransition reports whether a booking may move from one status to
// another. Terminal states admit no transitions.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the status still occupies its slot for
// conflict purposes.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// Valid reports whether s is a known status value.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

// Booking is a therapy session reservation. SessionDate is the calendar
// day, SessionTime the wall-clock start in "HH:MM".
type Booking struct {
	Base
	PatientID       uuid.UUID     `json:"patient_id" db:"patient_id"`
	TherapistID     uuid.UUID     `json:"therapist_id" db:"therapist_id"`
	SessionDate     time.Time     `json:"session_date" db:"session_date"`
	SessionTime     string        `json:"session_time" db:"session_time"`
	DurationMinutes int           `json:"duration_minutes" db:"duration_minutes"`
	Status          BookingStatus `json:"status" db:"status"`
	SessionType     string        `json:"session_type" db:"session_type"`
	Notes           string        `json:"notes,omitempty" db:"notes"`
	CancelReason    *string       `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelledBy     *uuid.UUID    `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	ReminderSent    bool          `json:"reminder_sent" db:"reminder_sent"`
}

// Interval returns the booking's [start, end) span in minutes since
// midnight.
func (b *Booking) Interval() (schedule.Interval, error) {
	start, err := schedule.ParseClock(b.SessionTime)
	if err != nil {
		return schedule.Interval{}, err
	}
	return schedule.Interval{Start: start, End: start + b.DurationMinutes}, nil
}

type CreateBookingRequest struct {
	TherapistID     string `json:"therapist_id" validate:"required,uuid"`
	SessionDate     string `json:"session_date" validate:"required,datetime=2006-01-02"`
	SessionTime     string `json:"session_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=15,max=240"`
	SessionType     string `json:"session_type" validate:"omitempty,oneof=video in_person"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type UpdateBookingRequest struct {
	Status *BookingStatus `json:"status" validate:"omitempty"`
	Notes  *string        `json:"notes" validate:"omitempty,max=1000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// BookingFilters narrows booking list queries.
type BookingFilters struct {
	PatientID   uuid.UUID
	TherapistID uuid.UUID
	Status      BookingStatus
	StartDate   time.Time
	EndDate     time.Time
}
