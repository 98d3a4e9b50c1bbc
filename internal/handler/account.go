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

// AccountAPI is the account service as seen by the HTTP layer.
type AccountAPI interface {
	Register(ctx context.Context, in service.RegisterInput) (model.User, error)
	CreateTheatreOperator(ctx context.Context, in service.RegisterInput) (model.User, error)
	Profile(ctx context.Context, userID uint64) (model.User, error)
	UpdateProfile(ctx context.Context, userID uint64, p model.ProfileUpdate) (model.User, error)
	Delete(ctx context.Context, userID uint64) error
}

// AccountHandler serves registration and the /v1/me endpoints.
type AccountHandler struct {
	Accounts AccountAPI
	Timeout  time.Duration
}

func NewAccountHandler(a AccountAPI, timeout time.Duration) *AccountHandler {
	if a == nil {
		panic("nil AccountAPI")
	}
	return &AccountHandler{Accounts: a, Timeout: timeout}
}

type registerReq struct {
	FullName    string `json:"full_name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=32"`
	City        string `json:"city" validate:"omitempty,max=80"`
}

type updateProfileReq struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=120"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
	City        *string `json:"city" validate:"omitempty,max=80"`
}

type userResp struct {
	ID          uint64     `json:"id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	City        string     `json:"city,omitempty"`
	Role        model.Role `json:"role"`
}

func newUserResp(u model.User) userResp {
	return userResp{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		City:        u.City,
		Role:        u.Role,
	}
}

func (r registerReq) input() service.RegisterInput {
	return service.RegisterInput{
		FullName:    r.FullName,
		Email:       r.Email,
		Password:    r.Password,
		PhoneNumber: r.PhoneNumber,
		City:        r.City,
	}
}

// Register creates an ordinary account.  No session is issued; the client
// logs in afterwards.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.Register(ctx, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, newUserResp(u))
}

// CreateTheatreOperator is the admin-only variant of Register.
func (h *AccountHandler) CreateTheatreOperator(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.CreateTheatreOperator(ctx, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, newUserResp(u))
}

// Me returns the caller's profile.
func (h *AccountHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.Profile(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// UpdateMe patches the caller's profile.
func (h *AccountHandler) UpdateMe(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req updateProfileReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.UpdateProfile(ctx, uid, model.ProfileUpdate{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// DeleteMe soft-deletes the caller's account.
func (h *AccountHandler) DeleteMe(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c, h.Timeout)
	defer cancel()

	if err := h.Accounts.Delete(ctx, uid); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing user identity"})
}
