package model

import (
	"github.com/google/uuid"
)

// SessionNote is a therapist's private record for a completed or ongoing
// session. Only the authoring therapist (or an admin) may read it.
type SessionNote struct {
	Base
	BookingID   uuid.UUID `json:"booking_id" db:"booking_id"`
	TherapistID uuid.UUID `json:"therapist_id" db:"therapist_id"`
	Content     string    `json:"content" db:"content"`
}

type CreateSessionNoteRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

type UpdateSessionNoteRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}
