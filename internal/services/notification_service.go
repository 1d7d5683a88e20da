package services

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"edulink_backend/internal/live"
	"edulink_backend/internal/logger"
	"edulink_backend/internal/models"
	"edulink_backend/internal/repositories"
	"edulink_backend/internal/services/dto"
	"edulink_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// LivePublisher is the slice of live.Publisher the services need; the
// indirection keeps them testable without a running dispatch loop.
type LivePublisher interface {
	Notify(userID string, feed live.Feed)
}

type NotificationService interface {
	CreateNotification(req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) error
	DeleteNotification(userID, notificationID string) error
	ListNotifications(userID string, limit int, cursor string) (*dto.NotificationListResponse, error)
	GetUnreadCount(userID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	publisher        LivePublisher
	emailer          UrgentMailer
}

// UrgentMailer delivers out-of-band copies of high-priority notifications.
// Failures are best-effort, like the rest of the side channel.
type UrgentMailer interface {
	SendNotificationMail(toEmail, title, message string) error
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	publisher LivePublisher,
	emailer UrgentMailer,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		emailer:          emailer,
	}
}

func (s *notificationService) CreateNotification(req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	// Reject before any write.
	if !repositories.IsValidNotificationType(req.Type) {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "notifications",
			"invalid notification type: "+req.Type, http.StatusBadRequest)
	}

	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.WrapNotFound(err, "notifications", "Recipient not found")
		}
		return nil, apperrors.StoreError("notifications", err)
	}

	var dataJSON datatypes.JSON
	if req.Data != nil {
		jsonData, err := json.Marshal(req.Data)
		if err != nil {
			return nil, apperrors.ValidationError("notification data is not serializable")
		}
		dataJSON = datatypes.JSON(jsonData)
	}

	notification := &models.Notification{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
		Data:    dataJSON,
		IsRead:  false,
	}

	if err := s.notificationRepo.CreateNotification(notification); err != nil {
		return nil, apperrors.StoreError("notifications", err)
	}

	s.publisher.Notify(req.UserID, live.FeedNotifications)

	if s.emailer != nil && isUrgentType(req.Type) {
		if mailErr := s.emailer.SendNotificationMail(user.Email, req.Title, req.Message); mailErr != nil {
			logger.Warn("urgent notification mail failed", "user_id", req.UserID, "error", mailErr)
		}
	}

	return buildNotificationResponse(notification), nil
}

func (s *notificationService) MarkAsRead(userID, notificationID string) error {
	notification, err := s.notificationRepo.FindNotificationByID(notificationID)
	if err != nil {
		if err == repositories.ErrNotificationNotFound {
			return apperrors.WrapNotFound(err, "notifications", "Notification not found")
		}
		return apperrors.StoreError("notifications", err)
	}
	if notification.UserID != userID {
		return apperrors.NewForbiddenError("Notification belongs to another user")
	}
	if notification.IsRead {
		// Idempotent: already read is success, no write, no fan-out.
		return nil
	}

	if err := s.notificationRepo.MarkAsRead(notificationID); err != nil {
		return apperrors.StoreError("notifications", err)
	}

	s.publisher.Notify(userID, live.FeedNotifications)
	return nil
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(userID); err != nil {
		// All-or-nothing: the repository transaction rolled back, the
		// inbox is untouched, no fan-out either.
		return apperrors.StoreError("notifications", err)
	}

	s.publisher.Notify(userID, live.FeedNotifications)
	return nil
}

func (s *notificationService) DeleteNotification(userID, notificationID string) error {
	notification, err := s.notificationRepo.FindNotificationByID(notificationID)
	if err != nil {
		if err == repositories.ErrNotificationNotFound {
			return apperrors.WrapNotFound(err, "notifications", "Notification not found")
		}
		return apperrors.StoreError("notifications", err)
	}
	if notification.UserID != userID {
		return apperrors.NewForbiddenError("Notification belongs to another user")
	}

	if err := s.notificationRepo.DeleteNotification(notificationID); err != nil {
		if err == repositories.ErrNotificationNotFound {
			return apperrors.WrapNotFound(err, "notifications", "Notification not found")
		}
		return apperrors.StoreError("notifications", err)
	}

	s.publisher.Notify(userID, live.FeedNotifications)
	return nil
}

func (s *notificationService) ListNotifications(userID string, limit int, cursor string) (*dto.NotificationListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	decoded, err := decodeCursor(cursor)
	if err != nil {
		return nil, apperrors.NewBadRequestError("Invalid pagination cursor")
	}

	notifications, err := s.notificationRepo.FindUserNotifications(userID, limit, decoded)
	if err != nil {
		return nil, apperrors.StoreError("notifications", err)
	}

	var nextCursor string
	if len(notifications) > limit {
		notifications = notifications[:limit]
		last := notifications[limit-1]
		nextCursor = encodeCursor(&repositories.ListCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	responses := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, buildNotificationResponse(&notifications[i]))
	}

	return &dto.NotificationListResponse{
		Notifications: responses,
		NextCursor:    nextCursor,
	}, nil
}

func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		return 0, apperrors.StoreError("notifications", err)
	}
	return count, nil
}

// --- helpers ---

func buildNotificationResponse(notification *models.Notification) *dto.NotificationResponse {
	response := &dto.NotificationResponse{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		IsRead:    notification.IsRead,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}

	if len(notification.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(notification.Data, &data); err == nil {
			response.Data = data
		}
	}

	return response
}

func encodeCursor(cursor *repositories.ListCursor) string {
	raw, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(cursor string) (*repositories.ListCursor, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, err
	}
	var decoded repositories.ListCursor
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

func isUrgentType(notificationType string) bool {
	switch notificationType {
	case repositories.NotificationTypeAssignmentDueSoon,
		repositories.NotificationTypeSubmissionGraded:
		return true
	}
	return false
}
