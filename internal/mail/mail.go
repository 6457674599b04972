// Package mail sends transactional email. The rest of the backend only sees
// the Mailer interface; delivery failures are logged by callers, never fatal.
package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr     string // host:port
	Username string
	Password string
	From     string
}

// Send delivers an HTML email through the configured relay.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	host := m.Addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s",
		m.From, to, subject, htmlBody)

	if err := smtp.SendMail(m.Addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer logs mail instead of sending it. Used when no SMTP relay is
// configured, so development setups work without one.
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	slog.Info("mail delivery skipped (no SMTP relay configured)", "to", to, "subject", subject)
	return nil
}
