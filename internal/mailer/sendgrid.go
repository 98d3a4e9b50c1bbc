package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
	log      logrus.FieldLogger
}

func NewSendGridSender(apiKey, from, fromName string, log logrus.FieldLogger) *SendGridSender {
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
		log:      log,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) (string, error) {
	html := msg.HTML
	if html == "" {
		html = msg.Text
	}
	m := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.from), msg.Subject, mail.NewEmail("", msg.To), msg.Text, html)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		s.log.WithError(err).Warn("sendgrid send failed")
		return "", fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		s.log.WithField("status", resp.StatusCode).Warn("sendgrid rejected message")
		return "", fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
