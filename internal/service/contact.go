package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/basma-club/clubhub/internal/mail"
)

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactService forwards public contact form messages to the club inbox.
type ContactService struct {
	mailer Mailer
	inbox  string
}

func NewContactService(mailer Mailer, inbox string) *ContactService {
	return &ContactService{
		mailer: mailer,
		inbox:  inbox,
	}
}

func (s *ContactService) Send(ctx context.Context, msg ContactMessage) error {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "Contact form"
	}

	body := fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message)

	err := s.mailer.Send(ctx, mail.Message{
		To:          s.inbox,
		ReplyTo:     msg.Email,
		ReplyToName: msg.Name,
		Subject:     "[Contact] " + subject,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("s.mailer.Send -> %w", err)
	}

	return nil
}
