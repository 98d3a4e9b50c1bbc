package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := NewAccessToken("k", 42, "ADMIN", time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), tok.Exp)

	claims, err := ParseAccessToken("k", tok.Token, jwt.WithTimeFunc(func() time.Time { return now.Add(59 * time.Minute) }))
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
}

func TestParseAccessTokenRejects(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	at := func(d time.Duration) jwt.ParserOption {
		return jwt.WithTimeFunc(func() time.Time { return now.Add(d) })
	}
	tok, err := NewAccessToken("k", 42, "USER", time.Hour, now)
	require.NoError(t, err)

	_, err = ParseAccessToken("k", tok.Token, at(time.Hour+time.Second))
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	_, err = ParseAccessToken("other", tok.Token, at(0))
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong key")

	_, err = ParseAccessToken("k", tok.Token[:len(tok.Token)-2], at(0))
	assert.ErrorIs(t, err, ErrInvalidToken, "truncated signature")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken("k", none, at(0))
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Role:             "USER",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = ParseAccessToken("k", noExp, at(0))
	assert.ErrorIs(t, err, ErrInvalidToken, "missing exp")

	badSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Role: "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = ParseAccessToken("k", badSub, at(0))
	assert.ErrorIs(t, err, ErrInvalidClaims, "non numeric subject")
}

func TestNewAccessTokenEmptySecret(t *testing.T) {
	_, err := NewAccessToken("", 1, "USER", time.Hour, time.Now())
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestNewRefreshToken(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a, err := NewRefreshToken(7*24*time.Hour, now)
	require.NoError(t, err)
	b, err := NewRefreshToken(7*24*time.Hour, now)
	require.NoError(t, err)

	assert.Len(t, a.Raw, RefreshTokenLength)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Equal(t, now.Add(7*24*time.Hour), a.Exp)
	assert.Len(t, a.Hash, 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), a.Hash)
	assert.NotContains(t, a.Hash, a.Raw)
}
