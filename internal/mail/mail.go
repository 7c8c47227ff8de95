// Package mail delivers outbound email for the blog, either through SMTP or
// to the application log when no SMTP server is configured.
package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrNoRecipients = errors.New("message has no recipients")

// Message is a plain-text email.
type Message struct {
	Subject string
	Body    string
	From    string
	To      []string
}

// Validate checks the fields every transport needs.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.From) == "" {
		return errors.New("message has no sender")
	}
	return nil
}

// Sender delivers messages. Implementations return an error when delivery fails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

// Send logs msg at info level.
func (LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	log.Info().
		Str("from", msg.From).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail not delivered, SMTP not configured")
	return nil
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, msg Message) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
