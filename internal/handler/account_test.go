package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/service"
)

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) Register(ctx context.Context, in service.RegisterInput) (model.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockAccounts) CreateTheatreOperator(ctx context.Context, in service.RegisterInput) (model.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockAccounts) Profile(ctx context.Context, userID uint64) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockAccounts) UpdateProfile(ctx context.Context, userID uint64, p model.ProfileUpdate) (model.User, error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockAccounts) Delete(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

func TestRegisterHandler(t *testing.T) {
	e := newEcho()
	m := new(mockAccounts)
	h := NewAccountHandler(m, time.Second)

	in := service.RegisterInput{FullName: "Ada", Email: "ada@example.com", Password: "Passw0rdX", City: "Rasht"}
	m.On("Register", mock.Anything, in).
		Return(model.User{ID: 4, FullName: "Ada", Email: "ada@example.com", City: "Rasht", Role: model.RoleUser}, nil).Once()
	m.On("Register", mock.Anything, in).Return(model.User{}, service.ErrEmailAlreadyRegistered).Once()

	body := `{"full_name":"Ada","email":"ada@example.com","password":"Passw0rdX","city":"Rasht"}`
	rec := call(t, e, h.Register, http.MethodPost, body, 0)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":4,"full_name":"Ada","email":"ada@example.com","city":"Rasht","role":"USER"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = call(t, e, h.Register, http.MethodPost, body, 0)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, e, h.Register, http.MethodPost, `{"email":"ada@example.com","password":"Passw0rdX"}`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "full_name: is required")

	m.AssertExpectations(t)
}

func TestCreateTheatreOperatorHandler(t *testing.T) {
	e := newEcho()
	m := new(mockAccounts)
	h := NewAccountHandler(m, time.Second)
	m.On("CreateTheatreOperator", mock.Anything, mock.AnythingOfType("service.RegisterInput")).
		Return(model.User{ID: 8, FullName: "Rex", Email: "ops@rex.example", Role: model.RoleTheatreOperator}, nil).Once()

	rec := call(t, e, h.CreateTheatreOperator, http.MethodPost,
		`{"full_name":"Rex","email":"ops@rex.example","password":"Operat0rPass"}`, 1)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"THEATER_OWNER"`)
	m.AssertExpectations(t)
}

func TestMeHandlers(t *testing.T) {
	e := newEcho()
	m := new(mockAccounts)
	h := NewAccountHandler(m, time.Second)

	city := "Yazd"
	m.On("Profile", mock.Anything, uint64(3)).Return(model.User{ID: 3, FullName: "Bo", Email: "bo@example.com", Role: model.RoleUser}, nil).Once()
	m.On("UpdateProfile", mock.Anything, uint64(3), model.ProfileUpdate{City: &city}).
		Return(model.User{ID: 3, FullName: "Bo", Email: "bo@example.com", City: "Yazd", Role: model.RoleUser}, nil).Once()
	m.On("Delete", mock.Anything, uint64(3)).Return(nil).Once()
	m.On("Delete", mock.Anything, uint64(3)).Return(service.ErrUserNotFound).Once()

	rec := call(t, e, h.Me, http.MethodGet, ``, 3)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":3,"full_name":"Bo","email":"bo@example.com","role":"USER"}`, rec.Body.String())

	rec = call(t, e, h.UpdateMe, http.MethodPatch, `{"city":"Yazd"}`, 3)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"city":"Yazd"`)

	rec = call(t, e, h.DeleteMe, http.MethodDelete, ``, 3)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = call(t, e, h.DeleteMe, http.MethodDelete, ``, 3)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, e, h.Me, http.MethodGet, ``, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	m.AssertExpectations(t)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	e := newEcho()

	h := &HealthHandler{DB: fakePinger{}}
	rec := call(t, e, h.Health, http.MethodGet, ``, 0)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = call(t, e, h.Ready, http.MethodGet, ``, 0)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"database":"ok"}`, rec.Body.String())

	h = &HealthHandler{
		DB:    fakePinger{err: errors.New("down")},
		Redis: func(context.Context) error { return errors.New("down") },
	}
	rec = call(t, e, h.Ready, http.MethodGet, ``, 0)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"database":"unavailable","redis":"degraded"}`, rec.Body.String())
}
