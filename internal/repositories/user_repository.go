package repositories

import (
	"errors"

	"edulink_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindStudentsByBatch(batchID string) ([]models.User, error)
	FindProfilesByUserIDs(userIDs []string) ([]models.StudentProfile, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindStudentsByBatch(batchID string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("batch_id = ? AND role = ?", batchID, models.UserRoleStudent).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) FindProfilesByUserIDs(userIDs []string) ([]models.StudentProfile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var profiles []models.StudentProfile
	err := r.db.Where("user_id IN ?", userIDs).Find(&profiles).Error
	return profiles, err
}
