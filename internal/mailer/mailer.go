package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds the SMTP account the fest mails from.
type Config struct {
	Host     string
	Port     int
	From     string
	Password string
}

// Mailer sends best-effort participant notifications. Failures are logged by
// the caller and never interrupt the admin or replay flows.
type Mailer struct {
	cfg Config
	log *zerolog.Logger
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// SendStatusEmail notifies a participant about their registration. Used on
// approval and after a queued registration is successfully replayed.
func (m *Mailer) SendStatusEmail(recipient string, events []string, status string) error {
	var subject, body string
	eventList := strings.Join(events, ", ")

	switch status {
	case "approved":
		subject = "Your Sparx registration is approved"
		body = fmt.Sprintf("Hi!\n\nYour registration for %s has been approved.\nSee you at the fest!", eventList)
	case "pending":
		subject = "Your Sparx registration was received"
		body = fmt.Sprintf("Hi!\n\nWe received your registration for %s.\nWe'll contact you with further details.", eventList)
	default:
		subject = "Your Sparx registration was updated"
		body = fmt.Sprintf("Hi!\n\nYour registration for %s is now marked as %s.", eventList, status)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, recipient, subject, body,
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	authn := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, authn, m.cfg.From, []string{recipient}, []byte(msg)); err != nil {
		m.log.Warn().Msgf("failed to email %s: %v", recipient, err)
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Msgf("notification sent to %s (status: %s)", recipient, status)
	return nil
}
