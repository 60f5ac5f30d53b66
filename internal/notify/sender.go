package notify

import "context"

// EmailSender delivers a plain-text email message.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a short text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Sender combines both delivery channels. Callers decide per channel whether
// a delivery failure is fatal; the sender itself always reports errors.
type Sender interface {
	EmailSender
	SMSSender
}
