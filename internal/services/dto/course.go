package dto

import "time"

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	BatchID     string `json:"batch_id" validate:"required,max=50"`
}

type CreateAssignmentRequest struct {
	CourseID    string     `json:"course_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	TotalPoints int        `json:"total_points" validate:"min=0,max=1000"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

type CreateSubmissionRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	ContentURL   string `json:"content_url" validate:"omitempty,url"`
	Comment      string `json:"comment" validate:"max=2000"`
}

type GradeSubmissionRequest struct {
	Grade float64 `json:"grade" validate:"min=0,max=100"`
}

type RecordQuizResultRequest struct {
	CourseID  string  `json:"course_id" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	QuizTitle string  `json:"quiz_title" validate:"required,max=200"`
	Score     float64 `json:"score" validate:"min=0"`
	MaxScore  float64 `json:"max_score" validate:"required,gt=0"`
}

type CourseResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TeacherID   string    `json:"teacher_id"`
	BatchID     string    `json:"batch_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
	Total   int64            `json:"total"`
}
