package service

import (
	"context"
	"fmt"
	"strings"

	"blog/internal/mailer"
	"blog/internal/models"
	"blog/internal/observability"
)

const contactSubject = "New message from the blog contact form"

// ContactService relays contact form submissions to the blog owner.
type ContactService struct {
	mailer    mailer.Mailer
	recipient string
}

type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

func NewContactService(m mailer.Mailer, recipient string) *ContactService {
	return &ContactService{mailer: m, recipient: recipient}
}

// Send delivers the message once. Relay failures are returned as UNAVAILABLE.
func (s *ContactService) Send(ctx context.Context, in ContactInput) error {
	if s.recipient == "" {
		return models.NewUnavailableError("Contact form is not configured", nil)
	}

	msg := mailer.Message{
		To:      []string{s.recipient},
		ReplyTo: in.Email,
		Subject: contactSubject,
		Body:    composeContactBody(in),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		observability.ContactMessages.WithLabelValues("failed").Inc()
		return models.NewUnavailableError("Could not send your message", err)
	}
	observability.ContactMessages.WithLabelValues("sent").Inc()
	return nil
}

func composeContactBody(in ContactInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", in.Name)
	fmt.Fprintf(&b, "Email: %s\n", in.Email)
	phone := in.Phone
	if phone == "" {
		phone = "-"
	}
	fmt.Fprintf(&b, "Phone: %s\n", phone)
	fmt.Fprintf(&b, "Message: %s\n", in.Message)
	return b.String()
}
