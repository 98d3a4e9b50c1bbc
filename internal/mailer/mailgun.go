package mailer

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
)

// MailgunSender delivers through the Mailgun messages API.
type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
	log  logrus.FieldLogger
}

func NewMailgunSender(domain, apiKey, from string, log logrus.FieldLogger) *MailgunSender {
	return &MailgunSender{mg: mailgun.NewMailgun(domain, apiKey), from: from, log: log}
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) (string, error) {
	m := s.mg.NewMessage(s.from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}
	_, id, err := s.mg.Send(ctx, m)
	if err != nil {
		s.log.WithError(err).Warn("mailgun send failed")
		return "", fmt.Errorf("mailgun send: %w", err)
	}
	return id, nil
}
