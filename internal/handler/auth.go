package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse-auth/internal/middleware"
	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/service"
)

// SessionAPI is the session orchestrator as seen by the HTTP layer.
type SessionAPI interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	VerifyLoginOTP(ctx context.Context, email, code string) (service.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uint64) (int64, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
}

// AuthHandler serves the login, OTP, refresh, logout and password reset
// endpoints.
type AuthHandler struct {
	Sessions SessionAPI
	Timeout  time.Duration
}

func NewAuthHandler(s SessionAPI, timeout time.Duration) *AuthHandler {
	if s == nil {
		panic("nil SessionAPI")
	}
	return &AuthHandler{Sessions: s, Timeout: timeout}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type verifyOTPReq struct {
	Email   string `json:"email" validate:"required,email"`
	OTPCode string `json:"otp_code" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
type forgotPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}
type resetPasswordReq struct {
	Email       string `json:"email" validate:"required,email"`
	OTPCode     string `json:"otp_code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type sessionResp struct {
	Token            string     `json:"token"`
	RefreshToken     string     `json:"refresh_token"`
	Role             model.Role `json:"role"`
	DisplayName      string     `json:"display_name"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RefreshExpiresAt time.Time  `json:"refresh_expires_at"`
}
type otpRequiredResp struct {
	RequiresOTP bool       `json:"requires_otp"`
	Role        model.Role `json:"role"`
	Message     string     `json:"message"`
}
type refreshResp struct {
	Token            string    `json:"token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func newSessionResp(r service.LoginResult) sessionResp {
	return sessionResp{
		Token:            r.Tokens.AccessToken,
		RefreshToken:     r.Tokens.RefreshToken,
		Role:             r.User.Role,
		DisplayName:      r.User.FullName,
		ExpiresAt:        r.Tokens.AccessExpiresAt,
		RefreshExpiresAt: r.Tokens.RefreshExpiresAt,
	}
}

func (h *AuthHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return requestContext(c, h.Timeout)
}

// Login: direct session for ordinary users, OTP challenge for admins.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	if res.RequiresOTP {
		return c.JSON(http.StatusOK, otpRequiredResp{
			RequiresOTP: true,
			Role:        res.User.Role,
			Message:     "otp sent to admin email",
		})
	}
	return c.JSON(http.StatusOK, newSessionResp(res))
}

// VerifyOTP completes an admin login.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Sessions.VerifyLoginOTP(ctx, req.Email, req.OTPCode)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResp(res))
}

// Refresh rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	pair, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, refreshResp{
		Token:            pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresAt:        pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

// Logout revokes the refresh token in the body.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Sessions.Logout(ctx, req.RefreshToken); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every refresh token of the authenticated caller.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	n, err := h.Sessions.LogoutAll(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"revoked": n})
}

// ForgotPassword always answers 202 for a well-formed email.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Sessions.RequestPasswordReset(ctx, req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"message": "if the account exists, an otp has been sent"})
}

// ResetPassword redeems the code and sets the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Sessions.ConfirmPasswordReset(ctx, req.Email, req.OTPCode, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated, please log in again"})
}
