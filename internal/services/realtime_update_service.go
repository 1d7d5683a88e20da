package services

import (
	"encoding/json"

	"edulink_backend/internal/live"
	"edulink_backend/internal/models"
	"edulink_backend/internal/repositories"
	"edulink_backend/internal/services/dto"
	"edulink_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type RealtimeUpdateService interface {
	// Publish creates a feed entry for system events and fans it out to
	// the user's live subscription, if any.
	Publish(userID, updateType string, payload, metadata map[string]interface{}) error
	ListRecent(userID string, limit int) ([]*dto.RealtimeUpdateResponse, error)
	MarkAsRead(userID, updateID string) error
}

type realtimeUpdateService struct {
	updateRepo repositories.RealtimeUpdateRepository
	publisher  LivePublisher
}

func NewRealtimeUpdateService(updateRepo repositories.RealtimeUpdateRepository, publisher LivePublisher) RealtimeUpdateService {
	return &realtimeUpdateService{updateRepo: updateRepo, publisher: publisher}
}

func (s *realtimeUpdateService) Publish(userID, updateType string, payload, metadata map[string]interface{}) error {
	update := &models.RealtimeUpdate{
		UserID: userID,
		Type:   updateType,
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return apperrors.ValidationError("update payload is not serializable")
		}
		update.Payload = datatypes.JSON(raw)
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return apperrors.ValidationError("update metadata is not serializable")
		}
		update.Metadata = datatypes.JSON(raw)
	}

	if err := s.updateRepo.Create(update); err != nil {
		return apperrors.StoreError("realtime_updates", err)
	}

	s.publisher.Notify(userID, live.FeedRealtimeUpdates)
	return nil
}

func (s *realtimeUpdateService) ListRecent(userID string, limit int) ([]*dto.RealtimeUpdateResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	updates, err := s.updateRepo.FindRecent(userID, limit)
	if err != nil {
		return nil, apperrors.StoreError("realtime_updates", err)
	}

	responses := make([]*dto.RealtimeUpdateResponse, 0, len(updates))
	for i := range updates {
		responses = append(responses, buildRealtimeUpdateResponse(&updates[i]))
	}
	return responses, nil
}

func (s *realtimeUpdateService) MarkAsRead(userID, updateID string) error {
	if err := s.updateRepo.MarkAsRead(userID, updateID); err != nil {
		if err == repositories.ErrRealtimeUpdateNotFound {
			return apperrors.WrapNotFound(err, "realtime_updates", "Update not found")
		}
		return apperrors.StoreError("realtime_updates", err)
	}

	s.publisher.Notify(userID, live.FeedRealtimeUpdates)
	return nil
}

func buildRealtimeUpdateResponse(update *models.RealtimeUpdate) *dto.RealtimeUpdateResponse {
	response := &dto.RealtimeUpdateResponse{
		ID:        update.ID,
		UserID:    update.UserID,
		Type:      update.Type,
		IsRead:    update.IsRead,
		Timestamp: update.CreatedAt,
	}

	if len(update.Payload) > 0 {
		var payload map[string]interface{}
		if err := json.Unmarshal(update.Payload, &payload); err == nil {
			response.Payload = payload
		}
	}
	if len(update.Metadata) > 0 {
		var metadata map[string]interface{}
		if err := json.Unmarshal(update.Metadata, &metadata); err == nil {
			response.Metadata = metadata
		}
	}

	return response
}
