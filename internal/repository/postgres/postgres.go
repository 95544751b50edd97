package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/mindwell/booking-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

type therapistRepository struct {
	db *sqlx.DB
}

type bookingRepository struct {
	BaseRepository
}

type sessionNoteRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewTherapistRepository(db *sqlx.DB) repository.TherapistRepository {
	return &therapistRepository{db: db}
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{BaseRepository: NewBaseRepository(db)}
}

func NewSessionNoteRepository(db *sqlx.DB) repository.SessionNoteRepository {
	return &sessionNoteRepository{db: db}
}
