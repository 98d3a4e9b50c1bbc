package utils // package utils provides helpers for token creation, hashing and code generation

import (
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding of digests
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"             // signed access tokens
	gonanoid "github.com/matoous/go-nanoid/v2" // opaque refresh token values
)

// refreshAlphabet is URL safe so the raw token can travel in JSON, headers
// or query strings without escaping.
const refreshAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// RefreshTokenLength is the number of characters in a raw refresh token.
// 64 characters over a 64 symbol alphabet gives 384 bits of entropy.
const RefreshTokenLength = 64

var (
	ErrEmptySecret   = errors.New("jwt secret must not be empty")
	ErrInvalidToken  = errors.New("invalid access token")
	ErrInvalidClaims = errors.New("invalid access token claims")
)

// AccessClaims is the claim set carried by every access token.  The subject
// is the decimal user id.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c AccessClaims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidClaims
	}
	return id, nil
}

// AccessToken represents a signed JWT together with its expiry.
type AccessToken struct {
	Token string    // serialized JWT
	Exp   time.Time // UTC expiration time
}

// RefreshToken is a freshly generated refresh token.  Raw goes to the client,
// Hash goes to the database.
type RefreshToken struct {
	Raw  string
	Hash string
	Exp  time.Time
}

// NewAccessToken signs an HS256 JWT for userID/role that expires ttl after now.
func NewAccessToken(secret string, userID uint64, role string, ttl time.Duration, now time.Time) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, ErrEmptySecret
	}
	now = now.UTC()
	exp := now.Add(ttl)
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and returns the claims.
// Only HS256 is accepted.  Extra parser options (for example a fixed clock in
// tests) are appended after the defaults.
func ParseAccessToken(secret, raw string, opts ...jwt.ParserOption) (AccessClaims, error) {
	var claims AccessClaims
	opts = append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}, opts...)
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil || !tok.Valid {
		return AccessClaims{}, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil || claims.Role == "" {
		return AccessClaims{}, ErrInvalidClaims
	}
	return claims, nil
}

// NewRefreshToken generates a random opaque token that expires ttl after now.
func NewRefreshToken(ttl time.Duration, now time.Time) (RefreshToken, error) {
	raw, err := gonanoid.Generate(refreshAlphabet, RefreshTokenLength)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw:  raw,
		Hash: HashRefreshRaw(raw),
		Exp:  now.UTC().Add(ttl),
	}, nil
}

// HashRefreshRaw returns the hex SHA-256 of a raw refresh token.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
