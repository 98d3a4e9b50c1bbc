package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineverse-auth/internal/model"
)

func TestOTPManager_Issue(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	m := NewOTPManager(store, 0, clock.Now)

	otp, err := m.Issue(context.Background(), 7, model.PurposeLoginStepUp)
	require.NoError(t, err)
	assert.Len(t, otp.Code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, otp.Code)
	assert.Equal(t, clock.Now().Add(DefaultOTPTTL), otp.ExpiresAt)
	assert.NotEmpty(t, otp.ID)

	stored, ok := store.otp(7, model.PurposeLoginStepUp)
	require.True(t, ok)
	assert.Equal(t, otp.Code, stored.Code)
}

func TestOTPManager_VerifyBoundary(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock()
	m := NewOTPManager(store, 5*time.Minute, clock.Now)
	m.Generate = func() (string, error) { return "007007", nil }

	_, err := m.Issue(context.Background(), 1, model.PurposePasswordReset)
	require.NoError(t, err)

	clock.Advance(5*time.Minute - time.Second)
	require.NoError(t, m.Verify(context.Background(), 1, "007007", model.PurposePasswordReset))
	assert.ErrorIs(t, m.Verify(context.Background(), 1, "007007", model.PurposePasswordReset), ErrInvalidOrExpiredOTP)

	stored, _ := store.otp(1, model.PurposePasswordReset)
	assert.True(t, stored.Used)
	require.NotNil(t, stored.UsedAt)
}

func TestOTPManager_GeneratorFailure(t *testing.T) {
	m := NewOTPManager(newMemStore(), time.Minute, nil)
	m.Generate = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := m.Issue(context.Background(), 1, model.PurposeLoginStepUp)
	assert.Error(t, err)
	assert.False(t, IsKnown(err))
}

func TestWellFormedCode(t *testing.T) {
	for code, want := range map[string]bool{
		"000000":  true,
		"123456":  true,
		"12345":   false,
		"1234567": false,
		"12 456":  false,
		"١٢٣٤٥٦":  false,
		"":        false,
	} {
		assert.Equal(t, want, wellFormedCode(code), code)
	}
}

func TestDowngrade(t *testing.T) {
	log := quietLogger()
	assert.NoError(t, downgrade(log, "op", nil))
	assert.ErrorIs(t, downgrade(log, "op", ErrUserNotFound), ErrUserNotFound)
	var ve *ValidationError
	assert.ErrorAs(t, downgrade(log, "op", invalid("x", "bad")), &ve)
	assert.ErrorIs(t, downgrade(log, "op", errors.New("deadlock found")), ErrStoreUnavailable)
}
