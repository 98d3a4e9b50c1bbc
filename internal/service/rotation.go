package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/repository"
	"github.com/iliyamo/cineverse-auth/internal/utils"
)

// TokenRotator exchanges a refresh token for a new pair exactly once and
// revokes tokens on logout.
type TokenRotator struct {
	Issuer *TokenIssuer
	Store  RefreshTokenStore
	Clock  Clock
}

func NewTokenRotator(issuer *TokenIssuer, store RefreshTokenStore, clock Clock) *TokenRotator {
	return &TokenRotator{Issuer: issuer, Store: store, Clock: clock}
}

// Rotate revokes the presented token and returns a fresh pair for its owner.
// Of several concurrent calls with the same token at most one succeeds.
func (r *TokenRotator) Rotate(ctx context.Context, presented string) (TokenPair, model.User, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return TokenPair{}, model.User{}, invalid("refresh_token", "is required")
	}

	now := r.Clock.now()
	next, err := utils.NewRefreshToken(r.Issuer.RefreshTTL, now)
	if err != nil {
		return TokenPair{}, model.User{}, fmt.Errorf("generate refresh token: %w", err)
	}

	owner, err := r.Store.Rotate(ctx, utils.HashRefreshRaw(presented), model.RefreshToken{
		TokenHash: next.Hash,
		ExpiresAt: next.Exp,
		CreatedAt: now,
	}, now)
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, model.User{}, ErrInvalidOrExpiredRefreshToken
	}
	if err != nil {
		return TokenPair{}, model.User{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	access, err := r.Issuer.IssueAccessToken(owner.ID, owner.Role)
	if err != nil {
		return TokenPair{}, model.User{}, fmt.Errorf("sign access token: %w", err)
	}
	return pairOf(access, next), owner, nil
}

// Logout revokes the presented token.  A second logout with the same token
// fails with ErrInvalidOrAlreadyLoggedOut.
func (r *TokenRotator) Logout(ctx context.Context, presented string) error {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return invalid("refresh_token", "is required")
	}
	err := r.Store.Revoke(ctx, utils.HashRefreshRaw(presented), r.Clock.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidOrAlreadyLoggedOut
	}
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// LogoutAll revokes every live refresh token of userID.
func (r *TokenRotator) LogoutAll(ctx context.Context, userID uint64) (int64, error) {
	n, err := r.Store.RevokeAllForUser(ctx, userID, r.Clock.now())
	if err != nil {
		return 0, fmt.Errorf("revoke all refresh tokens: %w", err)
	}
	return n, nil
}
