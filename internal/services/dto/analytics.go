package dto

import "time"

type StudentMetric struct {
	StudentID                string  `json:"student_id"`
	FirstName                string  `json:"first_name"`
	LastName                 string  `json:"last_name"`
	Email                    string  `json:"email"`
	AverageQuizScore         float64 `json:"average_quiz_score"`
	AssignmentSubmissionRate float64 `json:"assignment_submission_rate"`
	SubmittedAssignments     int     `json:"submitted_assignments"`
	TotalAssignments         int     `json:"total_assignments"`
	PerformanceScore         float64 `json:"performance_score"`
}

type CodingProfileSummary struct {
	LinkedProfiles int            `json:"linked_profiles"`
	ByPlatform     map[string]int `json:"by_platform"`
}

// BatchAnalyticsSnapshot is derived per request (subject to a short TTL
// cache) and never persisted.
type BatchAnalyticsSnapshot struct {
	BatchID                         string               `json:"batch_id"`
	TotalStudents                   int                  `json:"total_students"`
	AverageQuizScore                float64              `json:"average_quiz_score"`
	AverageAssignmentSubmissionRate float64              `json:"average_assignment_submission_rate"`
	CodingProfileSummary            CodingProfileSummary `json:"coding_profile_summary"`
	TopPerformers                   []StudentMetric      `json:"top_performers"`
	BottomPerformers                []StudentMetric      `json:"bottom_performers"`
	StudentMetrics                  []StudentMetric      `json:"student_metrics"`
	ComputedAt                      time.Time            `json:"computed_at"`
}

type TrendPoint struct {
	Date            string `json:"date"` // YYYY-MM-DD
	SubmissionCount int    `json:"submission_count"`
}

type TrendResponse struct {
	BatchID string       `json:"batch_id"`
	Days    int          `json:"days"`
	Trends  []TrendPoint `json:"trends"`
}
