package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cineverse-auth/internal/model"
)

// TokenRepo persists refresh tokens by SHA-256 hash.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// revokeLive is the compare-and-swap used by rotation and logout: it only
// matches a token that is neither revoked nor expired.
const revokeLive = `UPDATE refresh_tokens
   SET revoked_at = ?
 WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?`

const insertRefresh = "INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?)"

// Store inserts a refresh token row.
func (r *TokenRepo) Store(ctx context.Context, t model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx, insertRefresh, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	return err
}

// Rotate revokes the live token identified by presentedHash and stores next
// for the same owner, all in one transaction.  The owner is returned so the
// caller can mint an access token.  ErrNotFound covers unknown, revoked and
// expired tokens as well as deactivated owners; in every such case nothing
// is written.
func (r *TokenRepo) Rotate(ctx context.Context, presentedHash string, next model.RefreshToken, now time.Time) (model.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, revokeLive, now, presentedHash, now)
	if err != nil {
		return model.User{}, err
	}
	if err := expectOne(res); err != nil {
		return model.User{}, err
	}

	var (
		u    model.User
		role string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT u.id, u.full_name, u.email, u.role, u.is_active
		   FROM refresh_tokens rt
		   JOIN users u ON u.id = rt.user_id
		  WHERE rt.token_hash = ?`, presentedHash).
		Scan(&u.ID, &u.FullName, &u.Email, &role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if !u.IsActive {
		return model.User{}, ErrNotFound
	}
	u.Role = model.Role(role)

	if _, err := tx.ExecContext(ctx, insertRefresh, u.ID, next.TokenHash, next.ExpiresAt, now); err != nil {
		return model.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	committed = true
	return u, nil
}

// Revoke marks one live token revoked.  ErrNotFound means the token was
// unknown, already revoked or expired.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, revokeLive, now, tokenHash, now)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// RevokeAllForUser revokes every live token of a user and returns how many
// were revoked.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) (int64, error) {
	return revokeAllForUser(ctx, r.DB, userID, now)
}

// DeleteStale removes tokens that expired, or were revoked, before cutoff.
func (r *TokenRepo) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)",
		cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func revokeAllForUser(ctx context.Context, db execer, userID uint64, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL AND expires_at > ?",
		now, userID, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
