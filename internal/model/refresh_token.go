package model

import "time"

// RefreshToken mirrors the 'refresh_tokens' table.  Only the SHA-256 hash of
// the raw token is persisted; the raw value is handed to the client once and
// never stored.
//
// A token is live while RevokedAt is nil and ExpiresAt is in the future.
// Revocation happens on logout, on rotation, on password reset and on
// account deletion.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Live reports whether the token can still be exchanged or revoked at now.
func (t RefreshToken) Live(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
