package mailer

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendGrid delivers the message through the SendGrid v3 API.
func (m *Mailer) sendGrid(msg Message) error {
	from := mail.NewEmail(m.cfg.FromName, m.cfg.FromAddress)

	plain := msg.PlainBody
	if plain == "" {
		plain = msg.Body
	}
	html := msg.Body
	if !msg.IsHTML {
		html = ""
	}

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", plain))
	if html != "" {
		message.AddContent(mail.NewContent("text/html", html))
	}

	client := sendgrid.NewSendClient(m.cfg.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("mailer: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mailer: sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}

	m.logger.Info("mailer: sent via SendGrid", "to", msg.To, "subject", msg.Subject, "status", resp.StatusCode)
	return nil
}
