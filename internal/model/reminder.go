package model

// BookingReminder joins a due booking with the contact details the
// reminder email needs.
type BookingReminder struct {
	Booking
	PatientName    string `db:"patient_name"`
	PatientEmail   string `db:"patient_email"`
	TherapistName  string `db:"therapist_name"`
	TherapistEmail string `db:"therapist_email"`
}
