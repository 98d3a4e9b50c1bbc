package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/repository"
	"github.com/iliyamo/cineverse-auth/internal/utils"
)

// CredentialVerifier checks an email/password pair against the stored hash.
type CredentialVerifier struct {
	Users UserStore
}

func NewCredentialVerifier(users UserStore) *CredentialVerifier {
	return &CredentialVerifier{Users: users}
}

// Verify returns the user when the password matches and the account is
// active.  Unknown email and wrong password both yield ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (model.User, error) {
	email = repository.NormalizeEmail(email)
	if email == "" {
		return model.User{}, invalid("email", "is required")
	}
	if password == "" {
		return model.User{}, invalid("password", "is required")
	}

	u, err := v.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnPasswordCheck(password)
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := utils.CheckPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("compare password: %w", err)
	}
	if !u.IsActive {
		return model.User{}, ErrDeactivatedAccount
	}
	return u, nil
}
