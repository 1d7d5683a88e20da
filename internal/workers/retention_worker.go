package workers

import (
	"context"
	"time"

	"edulink_backend/internal/live"
	"edulink_backend/internal/logger"
	"edulink_backend/internal/repositories"
)

// ChangeNotifier re-evaluates a user's live feed after its backing rows
// change. Satisfied by *live.Publisher.
type ChangeNotifier interface {
	Notify(userID string, feed live.Feed)
}

// RetentionWorker periodically purges aged rows: realtime updates past
// their window and notifications that were read long ago. Unread
// notifications are never purged. Users whose rows were removed get a
// feed notification, since a purge can change their top-N window.
type RetentionWorker struct {
	notificationRepo repositories.NotificationRepository
	updateRepo       repositories.RealtimeUpdateRepository
	notifier         ChangeNotifier

	realtimeUpdateAge   time.Duration
	readNotificationAge time.Duration
	sweepInterval       time.Duration
}

func NewRetentionWorker(
	notificationRepo repositories.NotificationRepository,
	updateRepo repositories.RealtimeUpdateRepository,
	notifier ChangeNotifier,
	realtimeUpdateDays, readNotificationDays, sweepIntervalMinutes int,
) *RetentionWorker {
	return &RetentionWorker{
		notificationRepo:    notificationRepo,
		updateRepo:          updateRepo,
		notifier:            notifier,
		realtimeUpdateAge:   time.Duration(realtimeUpdateDays) * 24 * time.Hour,
		readNotificationAge: time.Duration(readNotificationDays) * 24 * time.Hour,
		sweepInterval:       time.Duration(sweepIntervalMinutes) * time.Minute,
	}
}

// Start runs the sweep loop until ctx is cancelled. One sweep runs
// immediately so a restart never extends the retention window.
func (w *RetentionWorker) Start(ctx context.Context) {
	go func() {
		w.sweep()

		ticker := time.NewTicker(w.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Retention worker stopped")
				return
			case <-ticker.C:
				w.sweep()
			}
		}
	}()
}

func (w *RetentionWorker) sweep() {
	now := time.Now()

	if userIDs, err := w.updateRepo.DeleteOlderThan(now.Add(-w.realtimeUpdateAge)); err != nil {
		logger.Error("Retention sweep of realtime updates failed", "error", err)
	} else if len(userIDs) > 0 {
		logger.Info("Purged aged realtime updates", "users", len(userIDs))
		w.notifyAll(userIDs, live.FeedRealtimeUpdates)
	}

	if userIDs, err := w.notificationRepo.DeleteReadOlderThan(now.Add(-w.readNotificationAge)); err != nil {
		logger.Error("Retention sweep of read notifications failed", "error", err)
	} else if len(userIDs) > 0 {
		logger.Info("Purged aged read notifications", "users", len(userIDs))
		w.notifyAll(userIDs, live.FeedNotifications)
	}
}

func (w *RetentionWorker) notifyAll(userIDs []string, feed live.Feed) {
	if w.notifier == nil {
		return
	}
	for _, userID := range userIDs {
		w.notifier.Notify(userID, feed)
	}
}
