package repositories

import (
	"errors"
	"time"

	"edulink_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRealtimeUpdateNotFound = errors.New("realtime update not found")

type RealtimeUpdateRepository interface {
	Create(update *models.RealtimeUpdate) error
	FindRecent(userID string, limit int) ([]models.RealtimeUpdate, error)
	MarkAsRead(userID, updateID string) error
	// DeleteOlderThan purges aged updates and returns the distinct IDs of
	// the users whose rows were removed, so callers can re-notify their
	// live feeds.
	DeleteOlderThan(olderThan time.Time) ([]string, error)
}

type realtimeUpdateRepository struct {
	db *gorm.DB
}

func NewRealtimeUpdateRepository(db *gorm.DB) RealtimeUpdateRepository {
	return &realtimeUpdateRepository{db: db}
}

func (r *realtimeUpdateRepository) Create(update *models.RealtimeUpdate) error {
	if update.UserID == "" {
		return errors.New("user ID is required")
	}
	if update.Type == "" {
		return errors.New("update type is required")
	}
	return r.db.Create(update).Error
}

func (r *realtimeUpdateRepository) FindRecent(userID string, limit int) ([]models.RealtimeUpdate, error) {
	var updates []models.RealtimeUpdate
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&updates).Error
	return updates, err
}

// MarkAsRead is scoped to the owning user; another user's update id
// behaves as absent.
func (r *realtimeUpdateRepository) MarkAsRead(userID, updateID string) error {
	result := r.db.Model(&models.RealtimeUpdate{}).
		Where("id = ? AND user_id = ?", updateID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRealtimeUpdateNotFound
	}
	return nil
}

func (r *realtimeUpdateRepository) DeleteOlderThan(olderThan time.Time) ([]string, error) {
	var purged []models.RealtimeUpdate
	result := r.db.Clauses(clause.Returning{Columns: []clause.Column{{Name: "user_id"}}}).
		Where("created_at < ?", olderThan).
		Delete(&purged)
	if result.Error != nil {
		return nil, result.Error
	}
	return distinctUserIDs(purged, func(u models.RealtimeUpdate) string { return u.UserID }), nil
}

func distinctUserIDs[T any](rows []T, userID func(T) string) []string {
	seen := make(map[string]struct{}, len(rows))
	var ids []string
	for _, row := range rows {
		id := userID(row)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
