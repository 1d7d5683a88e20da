package repositories

import (
	"errors"

	"edulink_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type CourseRepository interface {
	CreateCourse(course *models.Course) error
	FindCourseByID(id string) (*models.Course, error)
	FindCoursesByBatch(batchID string) ([]models.Course, error)
	ListCourses(limit, offset int) ([]models.Course, int64, error)

	CreateAssignment(assignment *models.Assignment) error
	FindAssignmentByID(id string) (*models.Assignment, error)
	FindAssignmentsByCourseIDs(courseIDs []string) ([]models.Assignment, error)

	CreateSubmission(submission *models.Submission) error
	FindSubmissionByID(id string) (*models.Submission, error)
	FindSubmissionsByAssignmentIDs(assignmentIDs []string) ([]models.Submission, error)
	GradeSubmission(id string, grade float64) error

	CreateQuizResult(result *models.QuizResult) error
	FindQuizResultsByCourseIDs(courseIDs []string) ([]models.QuizResult, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) CreateCourse(course *models.Course) error {
	return r.db.Create(course).Error
}

func (r *courseRepository) FindCourseByID(id string) (*models.Course, error) {
	var course models.Course
	err := r.db.First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindCoursesByBatch(batchID string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Where("batch_id = ?", batchID).Find(&courses).Error
	return courses, err
}

func (r *courseRepository) ListCourses(limit, offset int) ([]models.Course, int64, error) {
	var courses []models.Course
	var total int64

	if err := r.db.Model(&models.Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&courses).Error
	return courses, total, err
}

func (r *courseRepository) CreateAssignment(assignment *models.Assignment) error {
	return r.db.Create(assignment).Error
}

func (r *courseRepository) FindAssignmentByID(id string) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.First(&assignment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *courseRepository) FindAssignmentsByCourseIDs(courseIDs []string) ([]models.Assignment, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var assignments []models.Assignment
	err := r.db.Where("course_id IN ?", courseIDs).Find(&assignments).Error
	return assignments, err
}

func (r *courseRepository) CreateSubmission(submission *models.Submission) error {
	return r.db.Create(submission).Error
}

func (r *courseRepository) FindSubmissionByID(id string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.First(&submission, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (r *courseRepository) FindSubmissionsByAssignmentIDs(assignmentIDs []string) ([]models.Submission, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	var submissions []models.Submission
	err := r.db.Where("assignment_id IN ?", assignmentIDs).Find(&submissions).Error
	return submissions, err
}

func (r *courseRepository) GradeSubmission(id string, grade float64) error {
	result := r.db.Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"grade":     grade,
			"graded_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (r *courseRepository) CreateQuizResult(result *models.QuizResult) error {
	return r.db.Create(result).Error
}

func (r *courseRepository) FindQuizResultsByCourseIDs(courseIDs []string) ([]models.QuizResult, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var results []models.QuizResult
	err := r.db.Where("course_id IN ?", courseIDs).Find(&results).Error
	return results, err
}
