package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/mindwell/booking-api/internal/config"
)

// Service sends the platform's transactional mail.
type Service interface {
	SendBookingConfirmation(ctx context.Context, to, name, therapist, date, timeOfDay string) error
	SendBookingReminder(ctx context.Context, to, name, counterpart, date, timeOfDay string) error
	SendBookingCancellation(ctx context.Context, to, name, date, timeOfDay, reason string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *smtpService) SendBookingConfirmation(_ context.Context, to, name, therapist, date, timeOfDay string) error {
	subject := "Your session is booked"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your session with %s is booked for %s at %s.</p><p>You can manage your booking from your account at any time.</p>",
		name, therapist, date, timeOfDay,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendBookingReminder(_ context.Context, to, name, counterpart, date, timeOfDay string) error {
	subject := "Reminder: session tomorrow"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>This is a reminder of your session with %s on %s at %s.</p><p>If you can no longer attend, please cancel in advance so the slot can be reused.</p>",
		name, counterpart, date, timeOfDay,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendBookingCancellation(_ context.Context, to, name, date, timeOfDay, reason string) error {
	subject := "Your session was cancelled"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your session on %s at %s has been cancelled.</p>",
		name, date, timeOfDay,
	)
	if reason != "" {
		body += fmt.Sprintf("<p>Reason: %s</p>", reason)
	}
	return s.send(to, subject, body)
}

func (s *smtpService) SendCustom(_ context.Context, to, subject, content string) error {
	return s.send(to, subject, content)
}
