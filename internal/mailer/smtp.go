package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// sendSMTP delivers the message through the configured SMTP relay.
func (m *Mailer) sendSMTP(msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, msg.To, []byte(m.formatMessage(msg))); err != nil {
		return fmt.Errorf("mailer: smtp send: %w", err)
	}
	m.logger.Info("mailer: sent via SMTP", "to", msg.To, "subject", msg.Subject)
	return nil
}

// formatMessage assembles the RFC 5322 message text.
func (m *Mailer) formatMessage(msg Message) string {
	contentType := "text/plain; charset=UTF-8"
	body := msg.Body
	if msg.IsHTML {
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.FromAddress)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
