package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"edulink_backend/internal/logger"
	"edulink_backend/internal/models"
	"edulink_backend/internal/repositories"
	"edulink_backend/internal/services/dto"
	"edulink_backend/pkg/apperrors"
	"edulink_backend/pkg/cache"
)

// Performance score weighting: 60% quiz average, 40% assignment
// submission rate. The weights must sum to 1.
const (
	quizWeight       = 0.6
	submissionWeight = 0.4

	rankedListSize = 4
)

var ErrInvalidTrendWindow = errors.New("trend window must be between 1 and 365 days")

type AnalyticsService interface {
	// ComputeBatchAnalytics rescans submissions and quiz results for the
	// batch's courses and returns a derived snapshot. Results are cached
	// per batch for the configured TTL; there is no event-driven
	// invalidation, the TTL bounds staleness.
	ComputeBatchAnalytics(ctx context.Context, batchID string) (*dto.BatchAnalyticsSnapshot, error)
	// ComputeTrend returns exactly `days` contiguous daily buckets for
	// the batch, oldest first, zero-filled where no submissions exist.
	ComputeTrend(ctx context.Context, batchID string, days int) (*dto.TrendResponse, error)
}

type analyticsService struct {
	userRepo      repositories.UserRepository
	courseRepo    repositories.CourseRepository
	analyticsRepo repositories.AnalyticsRepository
	snapshots     cache.Cache
	cacheTTL      time.Duration
	now           func() time.Time
}

func NewAnalyticsService(
	userRepo repositories.UserRepository,
	courseRepo repositories.CourseRepository,
	analyticsRepo repositories.AnalyticsRepository,
	snapshots cache.Cache,
	cacheTTL time.Duration,
) AnalyticsService {
	return &analyticsService{
		userRepo:      userRepo,
		courseRepo:    courseRepo,
		analyticsRepo: analyticsRepo,
		snapshots:     snapshots,
		cacheTTL:      cacheTTL,
		now:           time.Now,
	}
}

func (s *analyticsService) ComputeBatchAnalytics(ctx context.Context, batchID string) (*dto.BatchAnalyticsSnapshot, error) {
	if cached := s.cachedSnapshot(ctx, batchID); cached != nil {
		return cached, nil
	}

	students, err := s.userRepo.FindStudentsByBatch(batchID)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}

	courses, err := s.courseRepo.FindCoursesByBatch(batchID)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}
	courseIDs := make([]string, len(courses))
	for i, course := range courses {
		courseIDs[i] = course.ID
	}

	assignments, err := s.courseRepo.FindAssignmentsByCourseIDs(courseIDs)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}
	assignmentIDs := make([]string, len(assignments))
	for i, assignment := range assignments {
		assignmentIDs[i] = assignment.ID
	}

	submissions, err := s.courseRepo.FindSubmissionsByAssignmentIDs(assignmentIDs)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}

	quizResults, err := s.courseRepo.FindQuizResultsByCourseIDs(courseIDs)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}

	metrics := buildStudentMetrics(students, len(assignments), submissions, quizResults)

	profileSummary, err := s.buildCodingProfileSummary(students)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}

	snapshot := &dto.BatchAnalyticsSnapshot{
		BatchID:              batchID,
		TotalStudents:        len(metrics),
		CodingProfileSummary: profileSummary,
		StudentMetrics:       metrics,
		ComputedAt:           s.now(),
	}
	snapshot.TopPerformers, snapshot.BottomPerformers = rankPerformers(metrics)

	// Batch-level averages are simple means over students, not weighted
	// by course size.
	if len(metrics) > 0 {
		var quizSum, rateSum float64
		for _, m := range metrics {
			quizSum += m.AverageQuizScore
			rateSum += m.AssignmentSubmissionRate
		}
		snapshot.AverageQuizScore = quizSum / float64(len(metrics))
		snapshot.AverageAssignmentSubmissionRate = rateSum / float64(len(metrics))
	}

	s.storeSnapshot(ctx, batchID, snapshot)
	return snapshot, nil
}

func (s *analyticsService) ComputeTrend(ctx context.Context, batchID string, days int) (*dto.TrendResponse, error) {
	if days < 1 || days > 365 {
		return nil, apperrors.ValidationError(ErrInvalidTrendWindow.Error())
	}

	courses, err := s.courseRepo.FindCoursesByBatch(batchID)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}
	courseIDs := make([]string, len(courses))
	for i, course := range courses {
		courseIDs[i] = course.ID
	}

	assignments, err := s.courseRepo.FindAssignmentsByCourseIDs(courseIDs)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}
	assignmentIDs := make([]string, len(assignments))
	for i, assignment := range assignments {
		assignmentIDs[i] = assignment.ID
	}

	today := startOfDay(s.now())
	windowStart := today.AddDate(0, 0, -(days - 1))

	counts, err := s.analyticsRepo.CountSubmissionsPerDay(assignmentIDs, windowStart)
	if err != nil {
		return nil, apperrors.StoreError("analytics", err)
	}

	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[c.Day.Format("2006-01-02")] = c.Count
	}

	// The series is always exactly `days` long: absent days are emitted
	// with a zero count, oldest first.
	trends := make([]dto.TrendPoint, days)
	for i := 0; i < days; i++ {
		day := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		trends[i] = dto.TrendPoint{
			Date:            day,
			SubmissionCount: byDay[day],
		}
	}

	return &dto.TrendResponse{BatchID: batchID, Days: days, Trends: trends}, nil
}

// --- metric computation ---

func buildStudentMetrics(students []models.User, totalAssignments int, submissions []models.Submission, quizResults []models.QuizResult) []dto.StudentMetric {
	submittedBy := make(map[string]map[string]struct{})
	for _, sub := range submissions {
		set, ok := submittedBy[sub.StudentID]
		if !ok {
			set = make(map[string]struct{})
			submittedBy[sub.StudentID] = set
		}
		set[sub.AssignmentID] = struct{}{}
	}

	quizPctSum := make(map[string]float64)
	quizCount := make(map[string]int)
	for _, result := range quizResults {
		if result.MaxScore <= 0 {
			continue
		}
		quizPctSum[result.StudentID] += result.Score / result.MaxScore * 100
		quizCount[result.StudentID]++
	}

	metrics := make([]dto.StudentMetric, 0, len(students))
	for _, student := range students {
		submitted := len(submittedBy[student.ID])

		var submissionRate float64
		if totalAssignments > 0 {
			submissionRate = float64(submitted) / float64(totalAssignments) * 100
		}

		var avgQuiz float64
		if quizCount[student.ID] > 0 {
			avgQuiz = quizPctSum[student.ID] / float64(quizCount[student.ID])
		}

		metrics = append(metrics, dto.StudentMetric{
			StudentID:                student.ID,
			FirstName:                student.FirstName,
			LastName:                 student.LastName,
			Email:                    student.Email,
			AverageQuizScore:         avgQuiz,
			AssignmentSubmissionRate: submissionRate,
			SubmittedAssignments:     submitted,
			TotalAssignments:         totalAssignments,
			PerformanceScore:         performanceScore(avgQuiz, submissionRate),
		})
	}

	return metrics
}

func performanceScore(averageQuizScore, submissionRate float64) float64 {
	score := quizWeight*averageQuizScore + submissionWeight*submissionRate
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// rankPerformers picks both lists from one ranking so they never share a
// student when 8 or more exist; with fewer students both lists truncate
// to min(4, n) and may overlap. Top is min(4, n) highest scores sorted
// descending, bottom is min(4, n) lowest sorted ascending; ties break by
// student id ascending in both.
func rankPerformers(metrics []dto.StudentMetric) (top, bottom []dto.StudentMetric) {
	ranked := make([]dto.StudentMetric, len(metrics))
	copy(ranked, metrics)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].PerformanceScore != ranked[j].PerformanceScore {
			return ranked[i].PerformanceScore > ranked[j].PerformanceScore
		}
		return ranked[i].StudentID < ranked[j].StudentID
	})

	size := rankedListSize
	if len(ranked) < size {
		size = len(ranked)
	}

	top = append([]dto.StudentMetric(nil), ranked[:size]...)

	bottom = append([]dto.StudentMetric(nil), ranked[len(ranked)-size:]...)
	sort.SliceStable(bottom, func(i, j int) bool {
		if bottom[i].PerformanceScore != bottom[j].PerformanceScore {
			return bottom[i].PerformanceScore < bottom[j].PerformanceScore
		}
		return bottom[i].StudentID < bottom[j].StudentID
	})

	return top, bottom
}

func (s *analyticsService) buildCodingProfileSummary(students []models.User) (dto.CodingProfileSummary, error) {
	summary := dto.CodingProfileSummary{ByPlatform: make(map[string]int)}

	studentIDs := make([]string, len(students))
	for i, student := range students {
		studentIDs[i] = student.ID
	}

	profiles, err := s.userRepo.FindProfilesByUserIDs(studentIDs)
	if err != nil {
		return summary, err
	}

	for _, profile := range profiles {
		if len(profile.CodingProfiles) == 0 {
			continue
		}
		var handles map[string]string
		if err := json.Unmarshal(profile.CodingProfiles, &handles); err != nil || len(handles) == 0 {
			continue
		}
		summary.LinkedProfiles++
		for platform := range handles {
			summary.ByPlatform[platform]++
		}
	}

	return summary, nil
}

// --- snapshot cache ---

func (s *analyticsService) cachedSnapshot(ctx context.Context, batchID string) *dto.BatchAnalyticsSnapshot {
	if s.snapshots == nil {
		return nil
	}

	raw, err := s.snapshots.Get(ctx, snapshotCacheKey(batchID))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("analytics cache read failed", "batch_id", batchID, "error", err)
		}
		return nil
	}

	var snapshot dto.BatchAnalyticsSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		logger.Warn("analytics cache entry corrupt, recomputing", "batch_id", batchID, "error", err)
		return nil
	}
	return &snapshot
}

func (s *analyticsService) storeSnapshot(ctx context.Context, batchID string, snapshot *dto.BatchAnalyticsSnapshot) {
	if s.snapshots == nil || s.cacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.snapshots.Set(ctx, snapshotCacheKey(batchID), raw, s.cacheTTL); err != nil {
		logger.Warn("analytics cache write failed", "batch_id", batchID, "error", err)
	}
}

func snapshotCacheKey(batchID string) string {
	return "analytics:batch:" + batchID
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
