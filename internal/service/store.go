package service

import (
	"context"
	"time"

	"github.com/iliyamo/cineverse-auth/internal/model"
)

// UserStore is the part of the credential store that holds user records.
// Lookups return repository.ErrNotFound when nothing matches.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetActiveByEmail(ctx context.Context, email string) (model.User, error)
	GetActiveByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, p model.ProfileUpdate) error
	Deactivate(ctx context.Context, id uint64, now time.Time) error
}

// OTPStore holds one-time codes.  Replace must leave exactly one redeemable
// code for the pair; Consume and ConsumeAndSetPassword must redeem a code at
// most once even under concurrent callers.
type OTPStore interface {
	Replace(ctx context.Context, otp model.OneTimeCode) error
	Consume(ctx context.Context, userID uint64, purpose model.OTPPurpose, code string, now time.Time) error
	ConsumeAndSetPassword(ctx context.Context, userID uint64, code, passwordHash string, now time.Time) error
}

// RefreshTokenStore persists refresh token hashes.  Rotate and Revoke are
// compare-and-swap operations on the live state of a single token.
type RefreshTokenStore interface {
	Store(ctx context.Context, t model.RefreshToken) error
	Rotate(ctx context.Context, presentedHash string, next model.RefreshToken, now time.Time) (model.User, error)
	Revoke(ctx context.Context, tokenHash string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) (int64, error)
}

// Notifier delivers an issued code to the user.  A failed delivery never
// invalidates the code.
type Notifier interface {
	Send(ctx context.Context, email, code string, purpose model.OTPPurpose) error
}
