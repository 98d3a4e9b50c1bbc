package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Authentication and authorization failures.  Each maps to one fixed
// message at the HTTP boundary and never carries internal detail.
var (
	ErrInvalidCredentials           = errors.New("invalid email or password")
	ErrDeactivatedAccount           = errors.New("account is deactivated")
	ErrInvalidOrExpiredOTP          = errors.New("invalid or expired otp")
	ErrUserNotFound                 = errors.New("user not found")
	ErrRoleNotEligible              = errors.New("otp login allowed only for admin")
	ErrInvalidOrExpiredRefreshToken = errors.New("invalid or expired refresh token")
	ErrInvalidOrAlreadyLoggedOut    = errors.New("invalid or already logged out token")
	ErrEmailAlreadyRegistered       = errors.New("email already registered")
	ErrOTPDeliveryFailed            = errors.New("failed to deliver otp")
)

// ErrStoreUnavailable replaces any infrastructure error before it leaves the
// service layer.
var ErrStoreUnavailable = errors.New("internal server error")

// ValidationError reports missing or malformed input.  It is produced before
// any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// known lists the errors that may cross the service boundary unchanged.
var known = []error{
	ErrInvalidCredentials,
	ErrDeactivatedAccount,
	ErrInvalidOrExpiredOTP,
	ErrUserNotFound,
	ErrRoleNotEligible,
	ErrInvalidOrExpiredRefreshToken,
	ErrInvalidOrAlreadyLoggedOut,
	ErrEmailAlreadyRegistered,
	ErrOTPDeliveryFailed,
	ErrStoreUnavailable,
}

// IsKnown reports whether err belongs to the public error taxonomy.
func IsKnown(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// downgrade passes taxonomy errors through and replaces everything else with
// ErrStoreUnavailable after logging the cause.
func downgrade(log logrus.FieldLogger, op string, err error) error {
	if err == nil || IsKnown(err) {
		return err
	}
	log.WithError(err).WithField("op", op).Error("auth operation failed")
	return ErrStoreUnavailable
}

func loggerOrStd(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
