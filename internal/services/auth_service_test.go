package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edulink_backend/internal/auth"
	"edulink_backend/internal/config"
	"edulink_backend/internal/models"
	"edulink_backend/internal/services/dto"
	"edulink_backend/pkg/apperrors"
)

func setupAuthService(t *testing.T) (AuthService, *mockUserRepo) {
	t.Helper()
	if config.AppConfig == nil {
		config.AppConfig = &config.Config{}
	}
	config.AppConfig.JWT.Secret = "test-secret"
	config.AppConfig.JWT.TTL = 60

	userRepo := newMockUserRepo()
	return NewAuthService(userRepo, NewActivityService(newMockActivityRepo())), userRepo
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	svc, userRepo := setupAuthService(t)

	registered, err := svc.Register(&dto.RegisterRequest{
		Email:     "aru@example.com",
		Password:  "sufficiently-long",
		FirstName: "Aru",
		Role:      "student",
		BatchID:   "2026-A",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "student", registered.User.Role)

	stored, err := userRepo.FindByEmail("aru@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "sufficiently-long", stored.PasswordHash, "password must be hashed")

	loggedIn, err := svc.Login(&dto.LoginRequest{
		Email:    "aru@example.com",
		Password: "sufficiently-long",
	})
	require.NoError(t, err)

	claims, err := auth.ParseToken(loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t)

	req := &dto.RegisterRequest{
		Email:     "dup@example.com",
		Password:  "sufficiently-long",
		FirstName: "Dup",
		Role:      "teacher",
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestAuthService_RegisterShortPassword(t *testing.T) {
	svc, userRepo := setupAuthService(t)

	_, err := svc.Register(&dto.RegisterRequest{
		Email:     "short@example.com",
		Password:  "short",
		FirstName: "S",
		Role:      "student",
	})
	require.Error(t, err)
	assert.Empty(t, userRepo.users)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Register(&dto.RegisterRequest{
		Email:     "aru@example.com",
		Password:  "sufficiently-long",
		FirstName: "Aru",
		Role:      "student",
	})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{Email: "aru@example.com", Password: "wrong-password"})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)

	// Unknown email produces the same error class, not a NotFound.
	_, err = svc.Login(&dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestAuthService_LoginInactiveAccount(t *testing.T) {
	svc, userRepo := setupAuthService(t)

	hash, err := auth.HashPassword("sufficiently-long")
	require.NoError(t, err)
	userRepo.users["u-1"] = &models.User{
		BaseModel:    models.BaseModel{ID: "u-1"},
		Email:        "locked@example.com",
		PasswordHash: hash,
		Role:         models.UserRoleStudent,
		Status:       models.UserStatusDisabled,
	}

	_, err = svc.Login(&dto.LoginRequest{Email: "locked@example.com", Password: "sufficiently-long"})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestAuthService_GetMe(t *testing.T) {
	svc, _ := setupAuthService(t)

	registered, err := svc.Register(&dto.RegisterRequest{
		Email:     "me@example.com",
		Password:  "sufficiently-long",
		FirstName: "Me",
		Role:      "teacher",
	})
	require.NoError(t, err)

	me, err := svc.GetMe(registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", me.Email)

	_, err = svc.GetMe("missing")
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
