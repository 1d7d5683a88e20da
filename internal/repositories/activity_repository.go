package repositories

import (
	"errors"

	"edulink_backend/internal/models"

	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(record *models.UserActivity) error
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(record *models.UserActivity) error {
	if record.UserID == "" {
		return errors.New("user ID is required")
	}
	if record.Activity == "" {
		return errors.New("activity tag is required")
	}
	return r.db.Create(record).Error
}
