// Package email sends transactional HTML mail. The auth service sees only the
// Sender capability; delivery failures surface synchronously so callers can
// run compensating cleanup.
package email

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Message is a single outbound transactional email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers a message or reports a synchronous failure.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail over SMTP.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender builds a reusable SMTP client.
func NewSMTPSender(host string, port int, username, password, from string) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, err
	}
	return &SMTPSender{client: client, from: from}, nil
}

// Send delivers the message, connecting per call.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return err
	}
	if err := m.To(msg.To); err != nil {
		return err
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return s.client.DialAndSendWithContext(ctx, m)
}

// LogSender writes mail to the log instead of delivering it. Used in
// development where no SMTP relay is configured.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message and always succeeds.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email (log driver; configure EMAIL_DRIVER=smtp for real delivery)")
	return nil
}
