package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "phonebook/internal/errors"
	"phonebook/internal/model"
	"phonebook/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*service.RegisterResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisterResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, user *model.User, rawToken string) error {
	args := m.Called(ctx, user, rawToken)
	return args.Error(0)
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func postJSON(e *echo.Echo, h echo.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("successful signup", func(t *testing.T) {
		token := "session-token"
		mockSvc := new(MockAuthService)
		mockSvc.On("Register", mock.Anything, "a@x.com", "secret1").Return(&service.RegisterResult{
			User: &model.User{
				Email:     "a@x.com",
				Plan:      model.PlanStarter,
				AvatarRef: model.PlaceholderAvatar("a@x.com"),
			},
			SessionToken:      token,
			VerificationToken: "verification-token",
		}, nil)

		h := NewAuthHandler(mockSvc)
		rec := postJSON(newTestEcho(), h.Signup, "/api/signup", `{"email":"a@x.com","password":"secret1"}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp SignupResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, token, resp.Token)
		assert.Equal(t, "verification-token", resp.VerificationToken)
		assert.Equal(t, "a@x.com", resp.User.Email)
		assert.Equal(t, model.PlanStarter, resp.User.Plan)
		assert.NotEmpty(t, resp.User.AvatarRef)
		mockSvc.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Register", mock.Anything, "a@x.com", "secret1").Return(nil, apperrors.ErrEmailInUse)

		h := NewAuthHandler(mockSvc)
		rec := postJSON(newTestEcho(), h.Signup, "/api/signup", `{"email":"a@x.com","password":"secret1"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		h := NewAuthHandler(mockSvc)

		rec := postJSON(newTestEcho(), h.Signup, "/api/signup", `{"email":"not-an-email","password":"x"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		token := "session-token"
		mockSvc := new(MockAuthService)
		mockSvc.On("Login", mock.Anything, "a@x.com", "secret1").Return(token, &model.User{
			Email: "a@x.com",
			Plan:  model.PlanStarter,
		}, nil)

		h := NewAuthHandler(mockSvc)
		rec := postJSON(newTestEcho(), h.Login, "/api/login", `{"email":"a@x.com","password":"secret1"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, token, resp.Token)
		assert.Equal(t, "a@x.com", resp.User.Email)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Login", mock.Anything, "a@x.com", "wrong").Return("", nil, apperrors.ErrInvalidCredentials)

		h := NewAuthHandler(mockSvc)
		rec := postJSON(newTestEcho(), h.Login, "/api/login", `{"email":"a@x.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unverified account", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Login", mock.Anything, "a@x.com", "secret1").Return("", nil, apperrors.ErrNotVerified)

		h := NewAuthHandler(mockSvc)
		rec := postJSON(newTestEcho(), h.Login, "/api/login", `{"email":"a@x.com","password":"secret1"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
