package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/codeforge/backend/internal/application/identity"
	"github.com/codeforge/backend/internal/domain/identity"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/infrastructure/auth"
	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/codeforge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByGoogleSub(ctx context.Context, googleSub string) (*identity.User, error) {
	args := m.Called(ctx, googleSub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByGoogleSub(ctx context.Context, googleSub string) (bool, error) {
	args := m.Called(ctx, googleSub)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
	})
}

func newAuthHandler(userRepo *MockUserRepository, verifier auth.GoogleVerifier, blacklist auth.TokenBlacklist) *AuthHandler {
	svc := appidentity.NewAuthService(
		userRepo,
		testJWTService(),
		verifier,
		blacklist,
		config.GoogleConfig{},
		zap.NewNop(),
	)
	return NewAuthHandler(svc)
}

func googleLoginRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/google", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_GoogleLogin_NewUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	verifier := &auth.StaticGoogleVerifier{
		Identity: auth.GoogleIdentity{
			Subject: "google-sub-123",
			Email:   "user@example.com",
			Name:    "Test User",
			Picture: "https://example.com/pic.png",
		},
	}
	h := newAuthHandler(userRepo, verifier, auth.NewInMemoryTokenBlacklist())

	userRepo.On("FindByGoogleSub", mock.Anything, "google-sub-123").Return(nil, shared.ErrNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = googleLoginRequest(t, GoogleLoginRequest{IDToken: "valid-google-token"})

	h.GoogleLogin(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool          `json:"success"`
		Data    LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.IsNewUser)
	assert.NotEmpty(t, resp.Data.Token.AccessToken)
	assert.NotEmpty(t, resp.Data.Token.RefreshToken)
	assert.Equal(t, "Bearer", resp.Data.Token.TokenType)
	assert.Equal(t, "user@example.com", resp.Data.User.Email)
	userRepo.AssertExpectations(t)
}

func TestAuthHandler_GoogleLogin_MissingToken(t *testing.T) {
	h := newAuthHandler(new(MockUserRepository), &auth.StaticGoogleVerifier{}, auth.NewInMemoryTokenBlacklist())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = googleLoginRequest(t, map[string]string{})

	h.GoogleLogin(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_GoogleLogin_InvalidToken(t *testing.T) {
	verifier := &auth.StaticGoogleVerifier{Err: assert.AnError}
	h := newAuthHandler(new(MockUserRepository), verifier, auth.NewInMemoryTokenBlacklist())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = googleLoginRequest(t, GoogleLoginRequest{IDToken: "forged"})

	h.GoogleLogin(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAuthHandler_GoogleLogin_SuspendedAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	verifier := &auth.StaticGoogleVerifier{
		Identity: auth.GoogleIdentity{
			Subject: "google-sub-123",
			Email:   "user@example.com",
			Name:    "Test User",
		},
	}
	h := newAuthHandler(userRepo, verifier, auth.NewInMemoryTokenBlacklist())

	user, err := identity.NewUser("google-sub-123", "user@example.com", "Test User", "")
	require.NoError(t, err)
	require.NoError(t, user.Suspend())
	userRepo.On("FindByGoogleSub", mock.Anything, "google-sub-123").Return(user, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = googleLoginRequest(t, GoogleLoginRequest{IDToken: "valid-google-token"})

	h.GoogleLogin(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_SUSPENDED")
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	h := newAuthHandler(userRepo, &auth.StaticGoogleVerifier{}, auth.NewInMemoryTokenBlacklist())

	user, err := identity.NewUser("google-sub-123", "user@example.com", "Test User", "")
	require.NoError(t, err)
	pair, err := testJWTService().GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	require.NoError(t, err)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	body, err := json.Marshal(RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.RefreshToken(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    RefreshTokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.Token.AccessToken)
	assert.NotEmpty(t, resp.Data.Token.RefreshToken)
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	h := newAuthHandler(new(MockUserRepository), &auth.StaticGoogleVerifier{}, auth.NewInMemoryTokenBlacklist())

	body, err := json.Marshal(RefreshTokenRequest{RefreshToken: "not-a-token"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.RefreshToken(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	h := newAuthHandler(new(MockUserRepository), &auth.StaticGoogleVerifier{}, blacklist)

	userID := uuid.New()
	pair, err := testJWTService().GenerateTokenPair(auth.GenerateTokenInput{
		UserID: userID,
		Email:  "user@example.com",
		Name:   "Test User",
	})
	require.NoError(t, err)
	claims, err := testJWTService().ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	c.Set(middleware.JWTClaimsKey, claims)

	h.Logout(c)

	assert.Equal(t, http.StatusOK, w.Code)

	revoked, err := blacklist.IsBlacklisted(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthHandler_Logout_NoClaims(t *testing.T) {
	h := newAuthHandler(new(MockUserRepository), &auth.StaticGoogleVerifier{}, auth.NewInMemoryTokenBlacklist())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)

	h.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	h := newAuthHandler(userRepo, &auth.StaticGoogleVerifier{}, auth.NewInMemoryTokenBlacklist())

	user, err := identity.NewUser("google-sub-123", "user@example.com", "Test User", "")
	require.NoError(t, err)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	c.Set(middleware.JWTUserIDKey, user.ID.String())

	h.GetCurrentUser(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    CurrentUserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user@example.com", resp.Data.User.Email)
}

func TestAuthHandler_GetCurrentUser_NotFound(t *testing.T) {
	userRepo := new(MockUserRepository)
	h := newAuthHandler(userRepo, &auth.StaticGoogleVerifier{}, auth.NewInMemoryTokenBlacklist())

	userID := uuid.New()
	userRepo.On("FindByID", mock.Anything, userID).Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	c.Set(middleware.JWTUserIDKey, userID.String())

	h.GetCurrentUser(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := newAuthHandler(new(MockUserRepository), &auth.StaticGoogleVerifier{}, auth.NewInMemoryTokenBlacklist())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)

	h.GetCurrentUser(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
