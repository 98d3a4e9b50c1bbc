package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/repository"
	"github.com/iliyamo/cineverse-auth/internal/utils"
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
	City        string
}

// AccountService covers registration and self-service profile management.
type AccountService struct {
	Users      UserStore
	BcryptCost int
	Clock      Clock
	Log        logrus.FieldLogger
}

func NewAccountService(users UserStore, bcryptCost int, clock Clock, log logrus.FieldLogger) *AccountService {
	return &AccountService{
		Users:      users,
		BcryptCost: bcryptCost,
		Clock:      clock,
		Log:        loggerOrStd(log).WithField("component", "account"),
	}
}

// Register creates an ordinary user.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	return s.create(ctx, in, model.RoleUser, "register")
}

// CreateTheatreOperator creates a THEATER_OWNER account on behalf of an admin.
func (s *AccountService) CreateTheatreOperator(ctx context.Context, in RegisterInput) (model.User, error) {
	return s.create(ctx, in, model.RoleTheatreOperator, "create_theatre_operator")
}

func (s *AccountService) create(ctx context.Context, in RegisterInput, role model.Role, op string) (model.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = repository.NormalizeEmail(in.Email)
	switch {
	case in.FullName == "":
		return model.User{}, invalid("full_name", "is required")
	case in.Email == "":
		return model.User{}, invalid("email", "is required")
	}
	if err := checkPasswordPolicy("password", in.Password); err != nil {
		return model.User{}, err
	}

	existing, err := s.Users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && !existing.IsActive:
		return model.User{}, ErrDeactivatedAccount
	case err == nil:
		return model.User{}, ErrEmailAlreadyRegistered
	case !errors.Is(err, repository.ErrNotFound):
		return model.User{}, downgrade(s.logger(), op, fmt.Errorf("load user: %w", err))
	}

	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return model.User{}, downgrade(s.logger(), op, fmt.Errorf("hash password: %w", err))
	}
	u := model.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		City:         strings.TrimSpace(in.City),
		Role:         role,
		IsActive:     true,
	}
	id, err := s.Users.Create(ctx, u)
	if errors.Is(err, repository.ErrEmailExists) {
		return model.User{}, ErrEmailAlreadyRegistered
	}
	if err != nil {
		return model.User{}, downgrade(s.logger(), op, fmt.Errorf("create user: %w", err))
	}
	u.ID = id
	s.logger().WithFields(logrus.Fields{"user_id": id, "role": role}).Info("account created")
	return u, nil
}

// Profile returns the active user with the given id.
func (s *AccountService) Profile(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.Users.GetActiveByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, downgrade(s.logger(), "profile", fmt.Errorf("load user: %w", err))
	}
	return u, nil
}

// UpdateProfile applies p and returns the updated user.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint64, p model.ProfileUpdate) (model.User, error) {
	if p.Empty() {
		return model.User{}, invalid("", "at least one field is required to update")
	}
	if p.FullName != nil && strings.TrimSpace(*p.FullName) == "" {
		return model.User{}, invalid("full_name", "must not be blank")
	}
	err := s.Users.UpdateProfile(ctx, userID, p)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, downgrade(s.logger(), "update_profile", fmt.Errorf("update profile: %w", err))
	}
	return s.Profile(ctx, userID)
}

// Delete deactivates the account and revokes its refresh tokens.
func (s *AccountService) Delete(ctx context.Context, userID uint64) error {
	err := s.Users.Deactivate(ctx, userID, s.Clock.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return downgrade(s.logger(), "delete_account", fmt.Errorf("deactivate user: %w", err))
	}
	s.logger().WithField("user_id", userID).Info("account deactivated")
	return nil
}

func (s *AccountService) logger() logrus.FieldLogger { return loggerOrStd(s.Log) }
