// Package mailer delivers report emails through SendGrid when an API key is
// configured, or plain SMTP otherwise.
package mailer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotConfigured is returned when neither SendGrid nor SMTP credentials
// are present.
var ErrNotConfigured = errors.New("mailer: no email configuration found")

// Config holds delivery settings for both transports.
type Config struct {
	SendGridAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	FromName    string
	FromAddress string
}

// Message is a single outbound email.
type Message struct {
	To        []string
	Subject   string
	Body      string
	PlainBody string // plain-text alternative for HTML messages
	IsHTML    bool
}

// Mailer picks a transport per message: SendGrid first, SMTP as fallback.
type Mailer struct {
	cfg    Config
	logger *slog.Logger

	// sendFn lets tests capture messages instead of hitting a transport.
	sendFn func(Message) error
}

func New(cfg Config, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Configured reports whether any transport can actually send.
func (m *Mailer) Configured() bool {
	return m.cfg.SendGridAPIKey != "" || (m.cfg.SMTPHost != "" && m.cfg.SMTPPassword != "")
}

// Send delivers a message through the first available transport.
func (m *Mailer) Send(msg Message) error {
	if m.sendFn != nil {
		return m.sendFn(msg)
	}
	if m.cfg.SendGridAPIKey != "" {
		return m.sendGrid(msg)
	}
	if m.cfg.SMTPHost != "" && m.cfg.SMTPPassword != "" {
		return m.sendSMTP(msg)
	}
	return ErrNotConfigured
}

// SendWithRetry retries transient delivery failures with linear backoff.
// Misconfiguration is not retried.
func (m *Mailer) SendWithRetry(msg Message, maxRetry int) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetry; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 5 * time.Second
			m.logger.Warn("mailer: send failed, retrying with backoff",
				"to", msg.To, "subject", msg.Subject, "retry", attempt, "backoff", backoff, "err", lastErr)
			time.Sleep(backoff)
		}
		lastErr = m.Send(msg)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrNotConfigured) {
			return lastErr
		}
	}
	return fmt.Errorf("mailer: giving up after %d retries: %w", maxRetry, lastErr)
}
