package models

import "time"

type Course struct {
	BaseModel
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	TeacherID   string `gorm:"not null;index" json:"teacher_id"`
	// BatchID tags the course with the cohort it belongs to; analytics
	// scans courses by this tag.
	BatchID string `gorm:"not null;index" json:"batch_id"`
}

type Assignment struct {
	BaseModel
	CourseID    string     `gorm:"not null;index" json:"course_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	TotalPoints int        `gorm:"default:100" json:"total_points"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

type Submission struct {
	BaseModel
	AssignmentID string     `gorm:"not null;index:idx_submission_assignment_student,unique" json:"assignment_id"`
	StudentID    string     `gorm:"not null;index:idx_submission_assignment_student,unique;index" json:"student_id"`
	ContentURL   string     `json:"content_url"`
	Comment      string     `json:"comment"`
	SubmittedAt  time.Time  `gorm:"not null;index" json:"submitted_at"`
	Grade        *float64   `json:"grade,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}

type QuizResult struct {
	BaseModel
	CourseID  string    `gorm:"not null;index" json:"course_id"`
	StudentID string    `gorm:"not null;index" json:"student_id"`
	QuizTitle string    `gorm:"not null" json:"quiz_title"`
	Score     float64   `gorm:"not null" json:"score"`
	MaxScore  float64   `gorm:"not null" json:"max_score"`
	TakenAt   time.Time `gorm:"not null" json:"taken_at"`
}
