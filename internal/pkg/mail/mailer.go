package mail

import (
	"log/slog"

	"lgu-facilities/internal/pkg/config"

	"gopkg.in/gomail.v2"
)

// Mailer is a best-effort side channel: callers log failures and move on,
// a send error must never roll back the transition that triggered it.
type Mailer interface {
	Send(to, name, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (m *SMTPMailer) Send(to, name, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetAddressHeader("To", to, name)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}

// NopMailer is wired when SMTP is disabled (local dev, tests).
type NopMailer struct{}

func NewNopMailer() *NopMailer {
	return &NopMailer{}
}

func (m *NopMailer) Send(to, _ string, subject, _ string) error {
	slog.Debug("email sending disabled, dropping message", "to", to, "subject", subject)
	return nil
}

func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Enabled {
		return NewSMTPMailer(cfg)
	}
	return NewNopMailer()
}
