package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/cineverse-auth/internal/model"
)

// OTPRepo stores one-time codes in 'user_otp'.  The unique key on
// (user_id, purpose) guarantees a single row per pair, so issuing a code is a
// single upsert and redeeming it is a single conditional update.
type OTPRepo struct{ DB *sql.DB }

func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

const upsertOTP = `INSERT INTO user_otp (id, user_id, code, purpose, issued_at, expires_at, is_used, used_at)
VALUES (?, ?, ?, ?, ?, ?, FALSE, NULL)
ON DUPLICATE KEY UPDATE
	id = VALUES(id),
	code = VALUES(code),
	issued_at = VALUES(issued_at),
	expires_at = VALUES(expires_at),
	is_used = FALSE,
	used_at = NULL`

const consumeOTP = `UPDATE user_otp
   SET is_used = TRUE, used_at = ?
 WHERE user_id = ? AND purpose = ? AND code = ? AND is_used = FALSE AND expires_at > ?`

// Replace stores otp as the only code for its (user, purpose) pair.  Any
// earlier code for the pair, used or not, stops being redeemable.
func (r *OTPRepo) Replace(ctx context.Context, otp model.OneTimeCode) error {
	_, err := r.DB.ExecContext(ctx, upsertOTP,
		otp.ID, otp.UserID, otp.Code, string(otp.Purpose), otp.IssuedAt, otp.ExpiresAt)
	return err
}

// Consume marks the matching code used.  It returns ErrNotFound when the
// code is wrong, already used or expired at now.
func (r *OTPRepo) Consume(ctx context.Context, userID uint64, purpose model.OTPPurpose, code string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, consumeOTP, now, userID, string(purpose), code, now)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ConsumeAndSetPassword redeems a PASSWORD_RESET code, stores the new hash
// and revokes the user's live refresh tokens.  Either all three writes
// commit or none do.
func (r *OTPRepo) ConsumeAndSetPassword(ctx context.Context, userID uint64, code, passwordHash string, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, consumeOTP, now, userID, string(model.PurposePasswordReset), code, now)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ? AND is_active = TRUE",
		passwordHash, now, userID)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}

	if _, err := revokeAllForUser(ctx, tx, userID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteExpired removes codes that expired before cutoff.
func (r *OTPRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM user_otp WHERE expires_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
