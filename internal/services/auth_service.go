package services

import (
	"errors"

	"edulink_backend/internal/auth"
	"edulink_backend/internal/models"
	"edulink_backend/internal/repositories"
	"edulink_backend/internal/services/dto"
	"edulink_backend/pkg/apperrors"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetMe(userID string) (*dto.UserResponse, error)
}

type authService struct {
	userRepo repositories.UserRepository
	activity ActivityService
}

func NewAuthService(userRepo repositories.UserRepository, activity ActivityService) AuthService {
	return &authService{userRepo: userRepo, activity: activity}
}

func (s *authService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, apperrors.NewConflictError("auth", "Email is already registered")
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.StoreError("auth", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.UserRole(req.Role),
		Status:       models.UserStatusActive,
		BatchID:      req.BatchID,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.StoreError("auth", err)
	}

	s.activity.Track(user.ID, "user_registered", map[string]interface{}{
		"role": req.Role,
	})

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{Token: token, User: buildUserResponse(user)}, nil
}

func (s *authService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid email or password")
		}
		return nil, apperrors.StoreError("auth", err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewForbiddenError("Account is not active")
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.activity.Track(user.ID, "user_logged_in", nil)

	return &dto.AuthResponse{Token: token, User: buildUserResponse(user)}, nil
}

func (s *authService) GetMe(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.WrapNotFound(err, "auth", "User not found")
		}
		return nil, apperrors.StoreError("auth", err)
	}
	return buildUserResponse(user), nil
}

func buildUserResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		BatchID:   user.BatchID,
	}
}
