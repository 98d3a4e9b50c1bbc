// Package notify delivers one-time codes to users, either directly through a
// mail provider or through the OTP queue.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cineverse-auth/internal/mailer"
	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/queue"
)

// Render builds the email for a code.  ttl is only used in the wording.
func Render(email, code string, purpose model.OTPPurpose, ttl time.Duration) mailer.Message {
	minutes := int(ttl / time.Minute)
	if minutes <= 0 {
		minutes = 5
	}
	var subject, intro string
	switch purpose {
	case model.PurposePasswordReset:
		subject = "Your CineVerse password reset code"
		intro = "Use this code to reset your password"
	default:
		subject = "Your CineVerse admin login code"
		intro = "Use this code to finish signing in"
	}
	text := fmt.Sprintf("%s: %s\nIt expires in %d minutes. If you did not request it, ignore this email.", intro, code, minutes)
	html := fmt.Sprintf("<p>%s:</p><p><strong>%s</strong></p><p>It expires in %d minutes. If you did not request it, ignore this email.</p>", intro, code, minutes)
	return mailer.Message{To: email, Subject: subject, Text: text, HTML: html}
}

// MailDispatcher sends codes straight through a mailer.Sender.
type MailDispatcher struct {
	Sender mailer.Sender
	TTL    time.Duration
}

func NewMailDispatcher(sender mailer.Sender, ttl time.Duration) *MailDispatcher {
	return &MailDispatcher{Sender: sender, TTL: ttl}
}

func (d *MailDispatcher) Send(ctx context.Context, email, code string, purpose model.OTPPurpose) error {
	if _, err := d.Sender.Send(ctx, Render(email, code, purpose, d.TTL)); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

// Deliver adapts MailDispatcher to queue.DeliverFunc.
func (d *MailDispatcher) Deliver(ctx context.Context, ev queue.OTPIssuedEvent) error {
	return d.Send(ctx, ev.Email, ev.Code, model.OTPPurpose(ev.Purpose))
}

// EventPublisher is implemented by queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.OTPIssuedEvent) error
}

// QueueDispatcher hands codes to the OTP queue; a consumer mails them later.
type QueueDispatcher struct {
	Publisher EventPublisher
	TTL       time.Duration
	Now       func() time.Time
}

func NewQueueDispatcher(p EventPublisher, ttl time.Duration) *QueueDispatcher {
	return &QueueDispatcher{Publisher: p, TTL: ttl}
}

func (d *QueueDispatcher) Send(ctx context.Context, email, code string, purpose model.OTPPurpose) error {
	now := time.Now().UTC()
	if d.Now != nil {
		now = d.Now()
	}
	ev := queue.OTPIssuedEvent{
		EventID:  uuid.NewString(),
		Email:    email,
		Code:     code,
		Purpose:  string(purpose),
		IssuedAt: now,
	}
	if d.TTL > 0 {
		ev.ExpiresAt = now.Add(d.TTL)
	}
	if err := d.Publisher.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publish otp event: %w", err)
	}
	return nil
}
