package services

import (
	"encoding/json"

	"edulink_backend/internal/logger"
	"edulink_backend/internal/models"
	"edulink_backend/internal/repositories"

	"gorm.io/datatypes"
)

type ActivityService interface {
	// Track records a user action, best-effort and at-most-once: any
	// failure is logged and swallowed, the caller never sees it and no
	// retry is scheduled.
	Track(userID, activity string, metadata map[string]interface{})
}

type activityService struct {
	activityRepo repositories.ActivityRepository
}

func NewActivityService(activityRepo repositories.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

func (s *activityService) Track(userID, activity string, metadata map[string]interface{}) {
	var metadataJSON datatypes.JSON
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			logger.Warn("activity metadata not serializable, dropped",
				"user_id", userID, "activity", activity, "error", err)
			return
		}
		metadataJSON = datatypes.JSON(raw)
	}

	record := &models.UserActivity{
		UserID:   userID,
		Activity: activity,
		Metadata: metadataJSON,
	}

	if err := s.activityRepo.Create(record); err != nil {
		logger.Warn("activity record dropped",
			"user_id", userID, "activity", activity, "error", err)
	}
}
