package notify

import (
	"crypto/tls"
	"errors"
	"fmt"

	mail "github.com/go-mail/mail/v2"
	"github.com/timmy/hirelane/internal/config"
)

// sender delivers composed messages. *mail.Dialer implements it.
type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer sends HTML mail over SMTP with mandatory STARTTLS.
type Mailer struct {
	from   string
	sender sender
}

// NewMailer creates a Mailer from the SMTP settings.
func NewMailer(cfg *config.MailConfig) (*Mailer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("smtp not configured (mail.host/mail.from)")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}

	d := mail.NewDialer(cfg.Host, port, cfg.User, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	return &Mailer{from: cfg.From, sender: d}, nil
}

// Send delivers one HTML message. An empty recipient list is a no-op.
func (m *Mailer) Send(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
