// Package mailer sends transactional email through a configurable provider.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cineverse-auth/internal/config"
)

// Message is a single plain-text plus HTML email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message and returns the provider's message id when it
// has one.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

var ErrInvalidConfig = errors.New("invalid mail configuration")

// NewSender returns the Sender selected by cfg.Provider.
func NewSender(cfg config.MailConfig, log logrus.FieldLogger) (Sender, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "mailer")
	switch strings.ToLower(cfg.Provider) {
	case "", "log":
		return &LogSender{Log: log}, nil
	case "smtp":
		if cfg.SMTPHost == "" || cfg.SMTPPort == "" || cfg.From == "" {
			return nil, fmt.Errorf("%w: smtp needs SMTP_HOST, SMTP_PORT and MAIL_FROM", ErrInvalidConfig)
		}
		return &SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
			Log:      log,
		}, nil
	case "sendgrid":
		if cfg.SendGridKey == "" || cfg.From == "" {
			return nil, fmt.Errorf("%w: sendgrid needs SENDGRID_API_KEY and MAIL_FROM", ErrInvalidConfig)
		}
		return NewSendGridSender(cfg.SendGridKey, cfg.From, cfg.FromName, log), nil
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunKey == "" || cfg.From == "" {
			return nil, fmt.Errorf("%w: mailgun needs MAILGUN_DOMAIN, MAILGUN_API_KEY and MAIL_FROM", ErrInvalidConfig)
		}
		return NewMailgunSender(cfg.MailgunDomain, cfg.MailgunKey, cfg.From, log), nil
	}
	return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
}
