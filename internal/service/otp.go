package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/repository"
	"github.com/iliyamo/cineverse-auth/internal/utils"
)

// DefaultOTPTTL is the validity window of a one-time code.
const DefaultOTPTTL = 5 * time.Minute

// OTPManager issues and redeems numeric one-time codes scoped to a user and
// a purpose.
type OTPManager struct {
	Store OTPStore
	TTL   time.Duration
	Clock Clock

	// Generate produces a new code; nil means a random 6 digit code.
	Generate func() (string, error)
}

func NewOTPManager(store OTPStore, ttl time.Duration, clock Clock) *OTPManager {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPManager{Store: store, TTL: ttl, Clock: clock}
}

func (m *OTPManager) generate() (string, error) {
	if m.Generate != nil {
		return m.Generate()
	}
	return utils.NewNumericCode(utils.OTPDigits)
}

// Issue creates a code for (userID, purpose) and supersedes any earlier one.
func (m *OTPManager) Issue(ctx context.Context, userID uint64, purpose model.OTPPurpose) (model.OneTimeCode, error) {
	code, err := m.generate()
	if err != nil {
		return model.OneTimeCode{}, fmt.Errorf("generate otp: %w", err)
	}
	now := m.Clock.now()
	otp := model.OneTimeCode{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.TTL),
	}
	if err := m.Store.Replace(ctx, otp); err != nil {
		return model.OneTimeCode{}, fmt.Errorf("store otp: %w", err)
	}
	return otp, nil
}

// Verify redeems code for (userID, purpose).  A code succeeds at most once.
func (m *OTPManager) Verify(ctx context.Context, userID uint64, code string, purpose model.OTPPurpose) error {
	if !wellFormedCode(code) {
		return ErrInvalidOrExpiredOTP
	}
	err := m.Store.Consume(ctx, userID, purpose, code, m.Clock.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidOrExpiredOTP
	}
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

// RedeemPasswordReset redeems a PASSWORD_RESET code and stores passwordHash
// as one unit of work.
func (m *OTPManager) RedeemPasswordReset(ctx context.Context, userID uint64, code, passwordHash string) error {
	if !wellFormedCode(code) {
		return ErrInvalidOrExpiredOTP
	}
	err := m.Store.ConsumeAndSetPassword(ctx, userID, code, passwordHash, m.Clock.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidOrExpiredOTP
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func wellFormedCode(code string) bool {
	if len(code) != utils.OTPDigits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
