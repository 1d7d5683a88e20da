package services

import (
	"fmt"
	"time"

	"edulink_backend/internal/logger"
	"edulink_backend/internal/models"
	"edulink_backend/internal/repositories"
	"edulink_backend/internal/services/dto"
	"edulink_backend/pkg/apperrors"
)

type CourseService interface {
	CreateCourse(teacherID string, req *dto.CreateCourseRequest) (*models.Course, error)
	GetCourse(courseID string) (*models.Course, error)
	ListCourses(page, pageSize int) ([]models.Course, int64, error)

	CreateAssignment(teacherID string, req *dto.CreateAssignmentRequest) (*models.Assignment, error)
	SubmitAssignment(studentID string, req *dto.CreateSubmissionRequest) (*models.Submission, error)
	GradeSubmission(teacherID, submissionID string, grade float64) error
	RecordQuizResult(teacherID string, req *dto.RecordQuizResultRequest) (*models.QuizResult, error)
}

type courseService struct {
	courseRepo      repositories.CourseRepository
	userRepo        repositories.UserRepository
	notifications   NotificationService
	realtimeUpdates RealtimeUpdateService
	activity        ActivityService
}

func NewCourseService(
	courseRepo repositories.CourseRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	realtimeUpdates RealtimeUpdateService,
	activity ActivityService,
) CourseService {
	return &courseService{
		courseRepo:      courseRepo,
		userRepo:        userRepo,
		notifications:   notifications,
		realtimeUpdates: realtimeUpdates,
		activity:        activity,
	}
}

func (s *courseService) CreateCourse(teacherID string, req *dto.CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   teacherID,
		BatchID:     req.BatchID,
	}

	if err := s.courseRepo.CreateCourse(course); err != nil {
		return nil, apperrors.StoreError("courses", err)
	}

	s.activity.Track(teacherID, "course_created", map[string]interface{}{
		"course_id": course.ID,
		"batch_id":  course.BatchID,
	})

	return course, nil
}

func (s *courseService) GetCourse(courseID string) (*models.Course, error) {
	course, err := s.courseRepo.FindCourseByID(courseID)
	if err != nil {
		if err == repositories.ErrCourseNotFound {
			return nil, apperrors.WrapNotFound(err, "courses", "Course not found")
		}
		return nil, apperrors.StoreError("courses", err)
	}
	return course, nil
}

func (s *courseService) ListCourses(page, pageSize int) ([]models.Course, int64, error) {
	offset := (page - 1) * pageSize
	courses, total, err := s.courseRepo.ListCourses(pageSize, offset)
	if err != nil {
		return nil, 0, apperrors.StoreError("courses", err)
	}
	return courses, total, nil
}

// CreateAssignment stores the assignment and notifies every student in
// the course's batch; notification failures degrade to a log line so a
// flaky inbox cannot fail assignment creation.
func (s *courseService) CreateAssignment(teacherID string, req *dto.CreateAssignmentRequest) (*models.Assignment, error) {
	course, err := s.GetCourse(req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, apperrors.NewForbiddenError("Only the course teacher can add assignments")
	}

	assignment := &models.Assignment{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		TotalPoints: req.TotalPoints,
		DueAt:       req.DueAt,
	}
	if assignment.TotalPoints == 0 {
		assignment.TotalPoints = 100
	}

	if err := s.courseRepo.CreateAssignment(assignment); err != nil {
		return nil, apperrors.StoreError("courses", err)
	}

	s.activity.Track(teacherID, "assignment_created", map[string]interface{}{
		"assignment_id": assignment.ID,
		"course_id":     course.ID,
	})

	students, err := s.userRepo.FindStudentsByBatch(course.BatchID)
	if err != nil {
		logger.Warn("assignment created but student fan-out skipped",
			"assignment_id", assignment.ID, "error", err)
		return assignment, nil
	}

	for _, student := range students {
		_, notifyErr := s.notifications.CreateNotification(&dto.CreateNotificationRequest{
			UserID:  student.ID,
			Type:    repositories.NotificationTypeAssignmentCreated,
			Title:   "New assignment: " + assignment.Title,
			Message: fmt.Sprintf("A new assignment was posted in %s", course.Title),
			Data: map[string]interface{}{
				"assignment_id": assignment.ID,
				"course_id":     course.ID,
			},
		})
		if notifyErr != nil {
			logger.Warn("assignment notification skipped",
				"student_id", student.ID, "assignment_id", assignment.ID, "error", notifyErr)
		}
	}

	return assignment, nil
}

// SubmitAssignment is the write that exercises the whole side-effect
// pipeline: activity record, teacher notification, realtime feed entry.
func (s *courseService) SubmitAssignment(studentID string, req *dto.CreateSubmissionRequest) (*models.Submission, error) {
	assignment, err := s.courseRepo.FindAssignmentByID(req.AssignmentID)
	if err != nil {
		if err == repositories.ErrAssignmentNotFound {
			return nil, apperrors.WrapNotFound(err, "submissions", "Assignment not found")
		}
		return nil, apperrors.StoreError("submissions", err)
	}

	course, err := s.GetCourse(assignment.CourseID)
	if err != nil {
		return nil, err
	}

	student, err := s.userRepo.FindByID(studentID)
	if err != nil {
		return nil, apperrors.StoreError("submissions", err)
	}

	submission := &models.Submission{
		AssignmentID: req.AssignmentID,
		StudentID:    studentID,
		ContentURL:   req.ContentURL,
		Comment:      req.Comment,
		SubmittedAt:  time.Now(),
	}

	if err := s.courseRepo.CreateSubmission(submission); err != nil {
		return nil, apperrors.StoreError("submissions", err)
	}

	s.activity.Track(studentID, "assignment_submitted", map[string]interface{}{
		"assignment_id": assignment.ID,
		"course_id":     course.ID,
	})

	studentName := student.FirstName + " " + student.LastName
	if _, notifyErr := s.notifications.CreateNotification(&dto.CreateNotificationRequest{
		UserID:  course.TeacherID,
		Type:    repositories.NotificationTypeSubmissionReceived,
		Title:   "New submission: " + assignment.Title,
		Message: fmt.Sprintf("%s submitted %s", studentName, assignment.Title),
		Data: map[string]interface{}{
			"submission_id": submission.ID,
			"assignment_id": assignment.ID,
		},
	}); notifyErr != nil {
		logger.Warn("submission notification skipped",
			"submission_id", submission.ID, "error", notifyErr)
	}

	if pubErr := s.realtimeUpdates.Publish(course.TeacherID, "submission_received",
		map[string]interface{}{
			"submission_id": submission.ID,
			"assignment_id": assignment.ID,
			"student_name":  studentName,
		}, nil); pubErr != nil {
		logger.Warn("submission realtime update skipped",
			"submission_id", submission.ID, "error", pubErr)
	}

	return submission, nil
}

func (s *courseService) GradeSubmission(teacherID, submissionID string, grade float64) error {
	submission, err := s.courseRepo.FindSubmissionByID(submissionID)
	if err != nil {
		if err == repositories.ErrSubmissionNotFound {
			return apperrors.WrapNotFound(err, "submissions", "Submission not found")
		}
		return apperrors.StoreError("submissions", err)
	}

	assignment, err := s.courseRepo.FindAssignmentByID(submission.AssignmentID)
	if err != nil {
		return apperrors.StoreError("submissions", err)
	}

	course, err := s.GetCourse(assignment.CourseID)
	if err != nil {
		return err
	}
	if course.TeacherID != teacherID {
		return apperrors.NewForbiddenError("Only the course teacher can grade submissions")
	}

	if err := s.courseRepo.GradeSubmission(submissionID, grade); err != nil {
		return apperrors.StoreError("submissions", err)
	}

	s.activity.Track(teacherID, "submission_graded", map[string]interface{}{
		"submission_id": submissionID,
		"grade":         grade,
	})

	if _, notifyErr := s.notifications.CreateNotification(&dto.CreateNotificationRequest{
		UserID:  submission.StudentID,
		Type:    repositories.NotificationTypeSubmissionGraded,
		Title:   "Graded: " + assignment.Title,
		Message: fmt.Sprintf("Your submission for %s was graded: %.1f", assignment.Title, grade),
		Data: map[string]interface{}{
			"submission_id": submissionID,
			"grade":         grade,
		},
	}); notifyErr != nil {
		logger.Warn("grade notification skipped", "submission_id", submissionID, "error", notifyErr)
	}

	return nil
}

func (s *courseService) RecordQuizResult(teacherID string, req *dto.RecordQuizResultRequest) (*models.QuizResult, error) {
	course, err := s.GetCourse(req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, apperrors.NewForbiddenError("Only the course teacher can record quiz results")
	}

	result := &models.QuizResult{
		CourseID:  req.CourseID,
		StudentID: req.StudentID,
		QuizTitle: req.QuizTitle,
		Score:     req.Score,
		MaxScore:  req.MaxScore,
		TakenAt:   time.Now(),
	}

	if err := s.courseRepo.CreateQuizResult(result); err != nil {
		return nil, apperrors.StoreError("courses", err)
	}

	if _, notifyErr := s.notifications.CreateNotification(&dto.CreateNotificationRequest{
		UserID:  req.StudentID,
		Type:    repositories.NotificationTypeQuizResult,
		Title:   "Quiz result: " + req.QuizTitle,
		Message: fmt.Sprintf("You scored %.1f/%.1f on %s", req.Score, req.MaxScore, req.QuizTitle),
		Data: map[string]interface{}{
			"quiz_result_id": result.ID,
			"course_id":      course.ID,
		},
	}); notifyErr != nil {
		logger.Warn("quiz result notification skipped", "quiz_result_id", result.ID, "error", notifyErr)
	}

	return result, nil
}
