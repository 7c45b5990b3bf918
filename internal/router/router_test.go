package router

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/service"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, input service.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uuid.UUID, input service.UpdateUserInput) (*model.User, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, input service.UpdateProfileInput) (*model.User, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(*model.User), args.Error(1)
}

type revocationList map[string]bool

func (r revocationList) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	r[tokenID] = true
	return nil
}

func (r revocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r[tokenID], nil
}

type gateFixture struct {
	e       *echo.Echo
	jwt     *auth.JWTService
	revoked revocationList
	users   *MockUserService
}

func newGateFixture() *gateFixture {
	f := &gateFixture{
		e:       echo.New(),
		jwt:     auth.NewJWTService("test-secret", time.Hour),
		revoked: revocationList{},
		users:   new(MockUserService),
	}
	f.e.HTTPErrorHandler = ErrorHandler(false, zap.NewNop())
	f.e.Validator = NewCustomValidator()

	requireUser := RequireUser(f.jwt, f.revoked, zap.NewNop())
	f.e.GET("/whoami", func(c echo.Context) error {
		claims := c.Get(handler.ClaimsContextKey).(*auth.Claims)
		return c.String(http.StatusOK, claims.UserID)
	}, requireUser)
	f.e.GET("/admin", func(c echo.Context) error {
		admin := c.Get(handler.AdminContextKey).(*model.User)
		return c.String(http.StatusOK, admin.Email)
	}, requireUser, RequireAdmin(f.users))
	return f
}

func (f *gateFixture) do(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireUser(t *testing.T) {
	f := newGateFixture()
	userID := uuid.New()

	t.Run("missing token", func(t *testing.T) {
		rec := f.do(t, "/whoami", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeError(t, rec).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := f.do(t, "/whoami", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := f.jwt.GenerateToken(userID, model.RoleCustomer)
		require.NoError(t, err)

		rec := f.do(t, "/whoami", token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID.String(), rec.Body.String())
	})

	t.Run("revoked token", func(t *testing.T) {
		token, err := f.jwt.GenerateToken(userID, model.RoleCustomer)
		require.NoError(t, err)
		claims, err := f.jwt.ValidateToken(token)
		require.NoError(t, err)
		f.revoked[claims.ID] = true

		rec := f.do(t, "/whoami", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	f := newGateFixture()
	adminID := uuid.New()
	customerID := uuid.New()
	ghostID := uuid.New()

	f.users.On("GetUser", mock.Anything, adminID).Return(&model.User{ID: adminID, Email: "admin@example.com", Role: model.RoleAdmin}, nil)
	f.users.On("GetUser", mock.Anything, customerID).Return(&model.User{ID: customerID, Role: model.RoleCustomer}, nil)
	f.users.On("GetUser", mock.Anything, ghostID).Return(nil, service.ErrUserNotFound)

	tests := []struct {
		name       string
		userID     uuid.UUID
		wantStatus int
		wantCode   string
	}{
		{name: "admin passes", userID: adminID, wantStatus: http.StatusOK},
		{name: "customer is rejected", userID: customerID, wantStatus: http.StatusForbidden, wantCode: "ADMIN_REQUIRED"},
		{name: "deleted user is rejected", userID: ghostID, wantStatus: http.StatusForbidden, wantCode: "ADMIN_REQUIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The role claim is ignored; only the stored user counts.
			token, err := f.jwt.GenerateToken(tt.userID, model.RoleAdmin)
			require.NoError(t, err)

			rec := f.do(t, "/admin", token)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			} else {
				assert.Equal(t, "admin@example.com", rec.Body.String())
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "unknown route", err: echo.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "domain error", err: service.ErrCartEmpty, wantStatus: http.StatusBadRequest, wantCode: "CART_EMPTY"},
		{name: "unclassified error", err: stderrors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			ErrorHandler(false, zap.NewNop())(tt.err, e.NewContext(req, rec))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Nil(t, body.Details)
		})
	}
}
