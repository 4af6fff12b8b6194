package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"billvox/internal/config"
	"billvox/internal/domain"
	"billvox/internal/service"
	"billvox/mocks"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "billvox-test",
	}
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		BusinessID:   uuid.New(),
		Email:        "owner@kirana.example",
		PasswordHash: string(hash),
		FullName:     "Owner",
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	user := testUser(t, "secret-password")
	userRepo := new(mocks.MockUserRepo)
	businessRepo := new(mocks.MockBusinessRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	businessRepo.On("GetByID", mock.Anything, user.BusinessID).
		Return(&domain.Business{ID: user.BusinessID, IsActive: true}, nil)

	svc := service.NewAuthService(userRepo, businessRepo, testJWTConfig())
	pair, err := svc.Login(context.Background(), service.LoginInput{Email: user.Email, Password: "secret-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.BusinessID, claims.BusinessID)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	user := testUser(t, "secret-password")
	userRepo := new(mocks.MockUserRepo)
	businessRepo := new(mocks.MockBusinessRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	businessRepo.On("GetByID", mock.Anything, user.BusinessID).
		Return(&domain.Business{ID: user.BusinessID, IsActive: true}, nil)

	svc := service.NewAuthService(userRepo, businessRepo, testJWTConfig())
	_, err := svc.Login(context.Background(), service.LoginInput{Email: user.Email, Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "nobody@kirana.example").Return(nil, domain.ErrNotFound)

	svc := service.NewAuthService(userRepo, new(mocks.MockBusinessRepo), testJWTConfig())
	_, err := svc.Login(context.Background(), service.LoginInput{Email: "nobody@kirana.example", Password: "whatever1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveBusiness(t *testing.T) {
	user := testUser(t, "secret-password")
	userRepo := new(mocks.MockUserRepo)
	businessRepo := new(mocks.MockBusinessRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	businessRepo.On("GetByID", mock.Anything, user.BusinessID).
		Return(&domain.Business{ID: user.BusinessID, IsActive: false}, nil)

	svc := service.NewAuthService(userRepo, businessRepo, testJWTConfig())
	_, err := svc.Login(context.Background(), service.LoginInput{Email: user.Email, Password: "secret-password"})
	assert.ErrorIs(t, err, domain.ErrBusinessInactive)
}

func TestAuthService_RefreshToken_RoundTrip(t *testing.T) {
	user := testUser(t, "secret-password")
	userRepo := new(mocks.MockUserRepo)
	businessRepo := new(mocks.MockBusinessRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	userRepo.On("GetByID", mock.Anything, user.BusinessID, user.ID).Return(user, nil)
	businessRepo.On("GetByID", mock.Anything, user.BusinessID).
		Return(&domain.Business{ID: user.BusinessID, IsActive: true}, nil)

	svc := service.NewAuthService(userRepo, businessRepo, testJWTConfig())
	pair, err := svc.Login(context.Background(), service.LoginInput{Email: user.Email, Password: "secret-password"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted on the refresh path.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_RejectsRefreshToken(t *testing.T) {
	user := testUser(t, "secret-password")
	userRepo := new(mocks.MockUserRepo)
	businessRepo := new(mocks.MockBusinessRepo)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	businessRepo.On("GetByID", mock.Anything, user.BusinessID).
		Return(&domain.Business{ID: user.BusinessID, IsActive: true}, nil)

	svc := service.NewAuthService(userRepo, businessRepo, testJWTConfig())
	pair, err := svc.Login(context.Background(), service.LoginInput{Email: user.Email, Password: "secret-password"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}
