package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/repository"
	"github.com/iliyamo/cineverse-auth/internal/utils"
)

// LoginResult is the outcome of a successful credential check.  Admin
// logins set RequiresOTP and carry no tokens.
type LoginResult struct {
	RequiresOTP bool
	User        model.User
	Tokens      *TokenPair
}

// SessionService drives login, OTP step-up, refresh, logout and password
// reset.  Every error it returns belongs to the public taxonomy.
type SessionService struct {
	Users      UserStore
	Verifier   *CredentialVerifier
	OTP        *OTPManager
	Tokens     *TokenIssuer
	Rotation   *TokenRotator
	Notifier   Notifier
	BcryptCost int
	Log        logrus.FieldLogger
}

// SessionDeps groups the collaborators of a SessionService.
type SessionDeps struct {
	Users      UserStore
	OTPs       OTPStore
	Refresh    RefreshTokenStore
	Notifier   Notifier
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	OTPTTL     time.Duration
	BcryptCost int
	Clock      Clock
	Log        logrus.FieldLogger
}

// NewSessionService wires the verifier, OTP manager, issuer and rotator
// over the given stores.
func NewSessionService(d SessionDeps) *SessionService {
	issuer := NewTokenIssuer(d.Secret, d.AccessTTL, d.RefreshTTL, d.Refresh, d.Clock)
	return &SessionService{
		Users:      d.Users,
		Verifier:   NewCredentialVerifier(d.Users),
		OTP:        NewOTPManager(d.OTPs, d.OTPTTL, d.Clock),
		Tokens:     issuer,
		Rotation:   NewTokenRotator(issuer, d.Refresh, d.Clock),
		Notifier:   d.Notifier,
		BcryptCost: d.BcryptCost,
		Log:        loggerOrStd(d.Log).WithField("component", "session"),
	}
}

// Login verifies credentials.  Non-admin users get a token pair at once;
// admins get a LOGIN_STEPUP code by notification and no tokens.
func (s *SessionService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.Verifier.Verify(ctx, email, password)
	if err != nil {
		return LoginResult{}, downgrade(s.logger(), "login", err)
	}

	if u.Role == model.RoleAdmin {
		if err := s.issueAndSend(ctx, u, model.PurposeLoginStepUp); err != nil {
			return LoginResult{}, downgrade(s.logger(), "login", err)
		}
		return LoginResult{RequiresOTP: true, User: u}, nil
	}

	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return LoginResult{}, downgrade(s.logger(), "login", err)
	}
	return LoginResult{User: u, Tokens: &pair}, nil
}

// VerifyLoginOTP completes an admin login.  Tokens are issued only after the
// LOGIN_STEPUP code has been redeemed.
func (s *SessionService) VerifyLoginOTP(ctx context.Context, email, code string) (LoginResult, error) {
	email = repository.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" {
		return LoginResult{}, invalid("email", "is required")
	}
	if code == "" {
		return LoginResult{}, invalid("otp_code", "is required")
	}

	u, err := s.Users.GetActiveByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginResult{}, ErrUserNotFound
	}
	if err != nil {
		return LoginResult{}, downgrade(s.logger(), "verify_otp", fmt.Errorf("load user: %w", err))
	}
	if u.Role != model.RoleAdmin {
		return LoginResult{}, ErrRoleNotEligible
	}

	if err := s.OTP.Verify(ctx, u.ID, code, model.PurposeLoginStepUp); err != nil {
		return LoginResult{}, downgrade(s.logger(), "verify_otp", err)
	}

	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return LoginResult{}, downgrade(s.logger(), "verify_otp", err)
	}
	return LoginResult{User: u, Tokens: &pair}, nil
}

// Refresh exchanges a refresh token for a new pair.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	pair, _, err := s.Rotation.Rotate(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, downgrade(s.logger(), "refresh", err)
	}
	return pair, nil
}

// Logout revokes one refresh token.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	return downgrade(s.logger(), "logout", s.Rotation.Logout(ctx, refreshToken))
}

// LogoutAll revokes every refresh token of an authenticated user.
func (s *SessionService) LogoutAll(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.Rotation.LogoutAll(ctx, userID)
	if err != nil {
		return 0, downgrade(s.logger(), "logout_all", err)
	}
	return n, nil
}

// RequestPasswordReset sends a PASSWORD_RESET code.  Unknown and inactive
// emails succeed silently so the response does not reveal account existence.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) error {
	email = repository.NormalizeEmail(email)
	if email == "" {
		return invalid("email", "is required")
	}

	u, err := s.Users.GetActiveByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger().Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return downgrade(s.logger(), "request_password_reset", fmt.Errorf("load user: %w", err))
	}
	return downgrade(s.logger(), "request_password_reset", s.issueAndSend(ctx, u, model.PurposePasswordReset))
}

// ConfirmPasswordReset redeems the code and replaces the password hash in
// one unit of work.  Live refresh tokens are revoked too, so the user has
// to log in again.
func (s *SessionService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = repository.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	switch {
	case email == "":
		return invalid("email", "is required")
	case code == "":
		return invalid("otp_code", "is required")
	}
	if err := checkPasswordPolicy("new_password", newPassword); err != nil {
		return err
	}

	u, err := s.Users.GetActiveByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return downgrade(s.logger(), "confirm_password_reset", fmt.Errorf("load user: %w", err))
	}

	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return downgrade(s.logger(), "confirm_password_reset", fmt.Errorf("hash password: %w", err))
	}
	if err := s.OTP.RedeemPasswordReset(ctx, u.ID, code, hash); err != nil {
		return downgrade(s.logger(), "confirm_password_reset", err)
	}
	s.logger().WithField("user_id", u.ID).Info("password reset completed")
	return nil
}

// issueAndSend issues a code and hands it to the notifier.  The code stays
// valid when delivery fails.
func (s *SessionService) issueAndSend(ctx context.Context, u model.User, purpose model.OTPPurpose) error {
	otp, err := s.OTP.Issue(ctx, u.ID, purpose)
	if err != nil {
		return err
	}
	if s.Notifier == nil {
		return nil
	}
	if err := s.Notifier.Send(ctx, u.Email, otp.Code, purpose); err != nil {
		s.logger().WithError(err).WithFields(logrus.Fields{
			"user_id": u.ID,
			"purpose": purpose,
		}).Warn("otp delivery failed")
		return ErrOTPDeliveryFailed
	}
	return nil
}

func (s *SessionService) logger() logrus.FieldLogger { return loggerOrStd(s.Log) }
