package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edulink_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrInvalidNotificationData = errors.New("invalid notification data")
)

// Notification type constants. CreateNotification rejects anything else.
const (
	NotificationTypeAssignmentCreated  = "assignment_created"
	NotificationTypeAssignmentDueSoon  = "assignment_due_soon"
	NotificationTypeSubmissionReceived = "submission_received"
	NotificationTypeSubmissionGraded   = "submission_graded"
	NotificationTypeQuizResult         = "quiz_result"
	NotificationTypeCourseAnnouncement = "course_announcement"
	NotificationTypeSystem             = "system"
)

// ListCursor is the decoded keyset position: the createdAt/id pair of the
// last row of the previous page.
type ListCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	FindNotificationByID(id string) (*models.Notification, error)
	// FindUserNotifications returns up to limit+1 rows ordered by
	// created_at DESC, id ASC starting after cursor (nil for the first
	// page). The extra row lets the caller detect a next page.
	FindUserNotifications(userID string, limit int, cursor *ListCursor) ([]models.Notification, error)
	FindRecentNotifications(userID string, limit int) ([]models.Notification, error)
	MarkAsRead(notificationID string) error
	MarkAllAsRead(userID string) error
	DeleteNotification(id string) error
	GetUnreadCount(userID string) (int64, error)
	// DeleteReadOlderThan purges aged read notifications and returns the
	// distinct IDs of the users whose rows were removed.
	DeleteReadOlderThan(olderThan time.Time) ([]string, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateNotification(notification *models.Notification) error {
	if err := r.validateNotification(notification); err != nil {
		return err
	}
	return r.db.Create(notification).Error
}

func (r *notificationRepository) FindNotificationByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindUserNotifications(userID string, limit int, cursor *ListCursor) ([]models.Notification, error) {
	var notifications []models.Notification

	query := r.db.Where("user_id = ?", userID)
	if cursor != nil {
		// Keyset continuation for (created_at DESC, id ASC) ordering.
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	err := query.Order("created_at DESC, id ASC").
		Limit(limit + 1).
		Find(&notifications).Error

	return notifications, err
}

func (r *notificationRepository) FindRecentNotifications(userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkAsRead is idempotent: marking an already-read notification succeeds
// without touching read_at.
func (r *notificationRepository) MarkAsRead(notificationID string) error {
	notification, err := r.FindNotificationByID(notificationID)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}

	return r.db.Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", notificationID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error
}

// MarkAllAsRead flips every unread notification of the user inside one
// transaction; on failure nothing is applied.
func (r *notificationRepository) MarkAllAsRead(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Updates(map[string]interface{}{
				"is_read": true,
				"read_at": time.Now(),
			}).Error
	})
}

func (r *notificationRepository) DeleteNotification(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) DeleteReadOlderThan(olderThan time.Time) ([]string, error) {
	var purged []models.Notification
	result := r.db.Clauses(clause.Returning{Columns: []clause.Column{{Name: "user_id"}}}).
		Where("is_read = ? AND created_at < ?", true, olderThan).
		Delete(&purged)
	if result.Error != nil {
		return nil, result.Error
	}
	return distinctUserIDs(purged, func(n models.Notification) string { return n.UserID }), nil
}

func (r *notificationRepository) validateNotification(notification *models.Notification) error {
	if notification.UserID == "" {
		return errors.New("user ID is required")
	}
	if notification.Type == "" {
		return errors.New("notification type is required")
	}
	if notification.Title == "" {
		return errors.New("notification title is required")
	}

	if !IsValidNotificationType(notification.Type) {
		return fmt.Errorf("invalid notification type: %s", notification.Type)
	}

	if len(notification.Data) > 0 && !json.Valid(notification.Data) {
		return ErrInvalidNotificationData
	}

	return nil
}

func IsValidNotificationType(notificationType string) bool {
	validTypes := map[string]bool{
		NotificationTypeAssignmentCreated:  true,
		NotificationTypeAssignmentDueSoon:  true,
		NotificationTypeSubmissionReceived: true,
		NotificationTypeSubmissionGraded:   true,
		NotificationTypeQuizResult:         true,
		NotificationTypeCourseAnnouncement: true,
		NotificationTypeSystem:             true,
	}
	return validTypes[notificationType]
}
