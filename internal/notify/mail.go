package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// SMTPConfig captures the dialer settings for outbound email.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("smtp: host is required")
	}
	if c.Port == 0 {
		return errors.New("smtp: port is required")
	}
	if strings.TrimSpace(c.From) == "" {
		return errors.New("smtp: from address is required")
	}
	return nil
}

// Mailer sends email through an SMTP relay using gomail.
type Mailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewMailer validates the configuration and builds the dialer.
func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

// SendEmail delivers a plain-text message to a single recipient.
func (m *Mailer) SendEmail(_ context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("smtp: recipient is required")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", to, err)
	}
	return nil
}
