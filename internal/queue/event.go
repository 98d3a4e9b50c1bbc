// Package queue carries OTP delivery requests over RabbitMQ so the request
// path does not wait on the mail provider.
package queue

import "time"

// OTPIssuedEvent is published after a one-time code has been stored.  It
// holds the code itself, so the queue must only be reachable by the
// delivery worker.
type OTPIssuedEvent struct {
	EventID   string    `json:"event_id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Purpose   string    `json:"purpose"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
