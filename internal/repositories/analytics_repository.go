package repositories

import (
	"time"

	"edulink_backend/internal/models"

	"gorm.io/gorm"
)

// DailySubmissionCount is one trend bucket as it comes out of the store;
// days without submissions simply have no row.
type DailySubmissionCount struct {
	Day   time.Time
	Count int
}

// AnalyticsRepository owns the aggregate reads the analytics service
// cannot express through the entity repositories.
type AnalyticsRepository interface {
	// CountSubmissionsPerDay groups submissions for the given assignments
	// by calendar day, from `since` (inclusive) onward.
	CountSubmissionsPerDay(assignmentIDs []string, since time.Time) ([]DailySubmissionCount, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountSubmissionsPerDay(assignmentIDs []string, since time.Time) ([]DailySubmissionCount, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}

	var rows []struct {
		Day   time.Time
		Count int
	}

	err := r.db.Model(&models.Submission{}).
		Select("DATE_TRUNC('day', submitted_at) AS day, COUNT(*) AS count").
		Where("assignment_id IN ? AND submitted_at >= ?", assignmentIDs, since).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]DailySubmissionCount, len(rows))
	for i, row := range rows {
		counts[i] = DailySubmissionCount{Day: row.Day, Count: row.Count}
	}
	return counts, nil
}
