package model

import "time"

// OTPPurpose scopes a one-time code.  A code issued for one purpose can never
// be redeemed for another.
type OTPPurpose string

const (
	PurposeLoginStepUp   OTPPurpose = "LOGIN_STEPUP"
	PurposePasswordReset OTPPurpose = "PASSWORD_RESET"
)

// OneTimeCode mirrors the 'user_otp' table.  The table holds at most one row
// per (UserID, Purpose); issuing a new code overwrites the previous one.
type OneTimeCode struct {
	ID        string // uuid v4
	UserID    uint64
	Code      string // fixed-width numeric code
	Purpose   OTPPurpose
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
}

// Usable reports whether the code can still be redeemed at now.
func (o OneTimeCode) Usable(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}
