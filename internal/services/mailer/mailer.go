// Package mailer relays contact-form messages through an SMTP relay.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pivot2ai/jobplans/internal/config"
)

// Mailer sends contact-form mail to the configured support mailbox.
type Mailer struct {
	cfg config.MailConfig
}

// New creates a mailer. Returns an error when the relay host is missing so
// the caller can run without the contact endpoint.
func New(cfg config.MailConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP_HOST is not configured")
	}
	return &Mailer{cfg: cfg}, nil
}

// Send delivers one contact-form submission. The visitor's address goes into
// Reply-To, not From, so the relay does not reject spoofed senders.
func (m *Mailer) Send(name, email, message string) error {
	msg, err := m.compose(name, email, message)
	if err != nil {
		return err
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.Username, []string{m.cfg.To}, msg); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	return nil
}

// compose builds the RFC 5322 message. Name and email land in headers, so a
// line break in either would let the visitor inject headers of their own;
// such submissions are rejected outright. The message text only ever appears
// in the body, where line breaks are harmless.
func (m *Mailer) compose(name, email, message string) ([]byte, error) {
	if strings.ContainsAny(name, "\r\n") || strings.ContainsAny(email, "\r\n") {
		return nil, fmt.Errorf("name and email must not contain line breaks")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.Username)
	fmt.Fprintf(&msg, "To: %s\r\n", m.cfg.To)
	fmt.Fprintf(&msg, "Reply-To: %s\r\n", email)
	fmt.Fprintf(&msg, "Subject: Contact Form: Message from %s\r\n", name)
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "From: %s (%s)\r\n\r\n%s\r\n", name, email, message)
	return []byte(msg.String()), nil
}
