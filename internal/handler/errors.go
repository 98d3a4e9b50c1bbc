package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse-auth/internal/service"
)

type errorSpec struct {
	status  int
	code    string
	message string
}

// errorTable maps every service error to a fixed HTTP response.  Messages
// never include internal state.
var errorTable = []struct {
	err  error
	spec errorSpec
}{
	{service.ErrInvalidCredentials, errorSpec{http.StatusUnauthorized, "invalid_credentials", "invalid email or password"}},
	{service.ErrDeactivatedAccount, errorSpec{http.StatusForbidden, "account_deactivated", "account is deactivated"}},
	{service.ErrInvalidOrExpiredOTP, errorSpec{http.StatusBadRequest, "invalid_or_expired_otp", "invalid or expired otp"}},
	{service.ErrUserNotFound, errorSpec{http.StatusNotFound, "user_not_found", "user not found"}},
	{service.ErrRoleNotEligible, errorSpec{http.StatusForbidden, "role_not_eligible", "otp login allowed only for admin"}},
	{service.ErrInvalidOrExpiredRefreshToken, errorSpec{http.StatusUnauthorized, "invalid_or_expired_refresh_token", "invalid or expired refresh token"}},
	{service.ErrInvalidOrAlreadyLoggedOut, errorSpec{http.StatusUnauthorized, "invalid_or_already_logged_out", "invalid or already logged out token"}},
	{service.ErrEmailAlreadyRegistered, errorSpec{http.StatusConflict, "email_already_registered", "email already registered"}},
	{service.ErrOTPDeliveryFailed, errorSpec{http.StatusInternalServerError, "otp_delivery_failed", "failed to send otp"}},
}

var internalError = errorSpec{http.StatusInternalServerError, "internal_error", "internal server error"}

// writeError renders err as {"error": code, "message": message}.  Anything
// outside the table, ErrStoreUnavailable included, becomes a generic 500;
// the service layer has already logged the cause.
func writeError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_error", "message": ve.Error()})
	}
	spec := internalError
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			spec = e.spec
			break
		}
	}
	return c.JSON(spec.status, echo.Map{"error": spec.code, "message": spec.message})
}
