// Package mailer delivers outbound mail through an SMTP relay.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blog/internal/config"
	"blog/internal/middleware"

	"github.com/wneessen/go-mail"
)

// Message is a plain-text mail.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer sends a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer opens one authenticated connection per message. It does not retry.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
}

// NewSMTPMailer builds a mailer from the SMTP settings in cfg.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.MailUser,
		password: cfg.MailPassword,
		timeout:  15 * time.Second,
	}
}

// New returns an SMTP mailer when credentials are configured. Without them it
// returns a LogMailer in development and nil in production, where a message
// that is never relayed must not be reported as sent.
func New(cfg *config.Config) Mailer {
	if cfg.MailConfigured() {
		return NewSMTPMailer(cfg)
	}
	if cfg.IsProduction() {
		middleware.Logger.Warn("SMTP credentials missing, contact form disabled")
		return nil
	}
	middleware.Logger.Warn("SMTP not configured, contact messages will only be logged")
	return LogMailer{}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = m.username
	}
	mm, err := buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(m.timeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail via %s:%d: %w", m.host, m.port, err)
	}
	return nil
}

func buildMessage(msg Message) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := mm.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := mm.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", msg.ReplyTo, err)
		}
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)
	return mm, nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	middleware.Logger.InfoContext(ctx, "mail not sent, SMTP disabled",
		slog.Any("to", msg.To),
		slog.String("reply_to", msg.ReplyTo),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)),
	)
	return nil
}
