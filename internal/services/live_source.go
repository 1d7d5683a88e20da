package services

import (
	"edulink_backend/internal/live"
	"edulink_backend/internal/repositories"
)

// liveSnapshotSource re-evaluates feed windows for the live publisher.
// Snapshots are returned in API shape so transports can serialize them
// without touching the models.
type liveSnapshotSource struct {
	notificationRepo repositories.NotificationRepository
	updateRepo       repositories.RealtimeUpdateRepository
}

func NewLiveSnapshotSource(
	notificationRepo repositories.NotificationRepository,
	updateRepo repositories.RealtimeUpdateRepository,
) live.SnapshotSource {
	return &liveSnapshotSource{
		notificationRepo: notificationRepo,
		updateRepo:       updateRepo,
	}
}

func (s *liveSnapshotSource) Snapshot(userID string, feed live.Feed, limit int) (interface{}, error) {
	switch feed {
	case live.FeedNotifications:
		notifications, err := s.notificationRepo.FindRecentNotifications(userID, limit)
		if err != nil {
			return nil, err
		}
		snapshot := make([]interface{}, 0, len(notifications))
		for i := range notifications {
			snapshot = append(snapshot, buildNotificationResponse(&notifications[i]))
		}
		return snapshot, nil

	case live.FeedRealtimeUpdates:
		updates, err := s.updateRepo.FindRecent(userID, limit)
		if err != nil {
			return nil, err
		}
		snapshot := make([]interface{}, 0, len(updates))
		for i := range updates {
			snapshot = append(snapshot, buildRealtimeUpdateResponse(&updates[i]))
		}
		return snapshot, nil
	}

	return nil, live.ErrUnknownFeed
}
