package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/utils"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenPair is what a client receives when a session is established or
// renewed.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenIssuer mints signed access tokens and persisted refresh tokens.
type TokenIssuer struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Store      RefreshTokenStore
	Clock      Clock
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore, clock Clock) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenIssuer{Secret: secret, AccessTTL: accessTTL, RefreshTTL: refreshTTL, Store: store, Clock: clock}
}

// IssueAccessToken signs an access token for userID/role.  Nothing is stored.
func (t *TokenIssuer) IssueAccessToken(userID uint64, role model.Role) (utils.AccessToken, error) {
	return utils.NewAccessToken(t.Secret, userID, string(role), t.AccessTTL, t.Clock.now())
}

// IssueRefreshToken generates and persists a refresh token for userID.  The
// returned Raw value is the only copy.
func (t *TokenIssuer) IssueRefreshToken(ctx context.Context, userID uint64) (utils.RefreshToken, error) {
	now := t.Clock.now()
	rt, err := utils.NewRefreshToken(t.RefreshTTL, now)
	if err != nil {
		return utils.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := t.Store.Store(ctx, model.RefreshToken{
		UserID:    userID,
		TokenHash: rt.Hash,
		ExpiresAt: rt.Exp,
		CreatedAt: now,
	}); err != nil {
		return utils.RefreshToken{}, fmt.Errorf("store refresh token: %w", err)
	}
	return rt, nil
}

// IssuePair signs an access token and persists a new refresh token for u.
func (t *TokenIssuer) IssuePair(ctx context.Context, u model.User) (TokenPair, error) {
	access, err := t.IssueAccessToken(u.ID, u.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := t.IssueRefreshToken(ctx, u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return pairOf(access, refresh), nil
}

func pairOf(a utils.AccessToken, r utils.RefreshToken) TokenPair {
	return TokenPair{
		AccessToken:      a.Token,
		AccessExpiresAt:  a.Exp,
		RefreshToken:     r.Raw,
		RefreshExpiresAt: r.Exp,
	}
}
