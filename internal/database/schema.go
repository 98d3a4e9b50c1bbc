package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement so the DSN does not need
// multiStatements enabled.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		full_name     VARCHAR(120)    NOT NULL,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		phone_number  VARCHAR(32)     NULL,
		city          VARCHAR(80)     NULL,
		role          VARCHAR(32)     NOT NULL DEFAULT 'USER',
		is_active     BOOLEAN         NOT NULL DEFAULT TRUE,
		created_at    DATETIME(6)     NOT NULL,
		updated_at    DATETIME(6)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// one row per (user, purpose): issuing a code overwrites the previous one
	`CREATE TABLE IF NOT EXISTS user_otp (
		id         CHAR(36)        NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		code       CHAR(6)         NOT NULL,
		purpose    VARCHAR(32)     NOT NULL,
		issued_at  DATETIME(6)     NOT NULL,
		expires_at DATETIME(6)     NOT NULL,
		is_used    BOOLEAN         NOT NULL DEFAULT FALSE,
		used_at    DATETIME(6)     NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_user_otp_user_purpose (user_id, purpose),
		KEY ix_user_otp_expires (expires_at),
		CONSTRAINT fk_user_otp_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME(6)     NOT NULL,
		revoked_at DATETIME(6)     NULL,
		created_at DATETIME(6)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY ix_refresh_tokens_user (user_id),
		KEY ix_refresh_tokens_expires (expires_at),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the auth tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
