// Package mail sends outbound email through SendGrid.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/basma-club/clubhub/internal/config"
	"github.com/basma-club/clubhub/internal/domain"
)

var ErrNotConfigured = fmt.Errorf("mail delivery is not configured: %w", domain.ErrBackendUnavailable)

// Message is a plain-text email. ReplyTo is optional.
type Message struct {
	To          string
	ReplyTo     string
	ReplyToName string
	Subject     string
	Body        string
}

type sender interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

type SendGridClient struct {
	client   sender
	from     string
	fromName string
}

// NewSendGridClient returns a client for conf. Without an API key every send
// fails with ErrNotConfigured.
func NewSendGridClient(conf *config.MailConfig) *SendGridClient {
	c := &SendGridClient{
		from:     conf.From,
		fromName: "Club",
	}
	if conf.SendGridAPIKey != "" {
		c.client = sendgrid.NewSendClient(conf.SendGridAPIKey)
	}
	return c
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	if c.client == nil {
		return ErrNotConfigured
	}
	if c.from == "" || msg.To == "" {
		return errors.New("mail: sender and recipient are required")
	}

	m := sgmail.NewSingleEmail(
		sgmail.NewEmail(c.fromName, c.from),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Body,
		"<pre>"+html.EscapeString(msg.Body)+"</pre>",
	)
	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail(msg.ReplyToName, msg.ReplyTo))
	}

	resp, err := c.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", domain.ErrBackendUnavailable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		zap.L().Error("sendgrid rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("body", resp.Body),
		)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: sendgrid status %d", domain.ErrBackendUnavailable, resp.StatusCode)
		}
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}

	zap.L().Info("mail sent", zap.Int("status", resp.StatusCode), zap.String("subject", msg.Subject))

	return nil
}
