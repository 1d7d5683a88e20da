package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edulink_backend/internal/middleware"
	"edulink_backend/internal/models"
	"edulink_backend/internal/services"
	"edulink_backend/internal/services/dto"
)

type CourseHandler struct {
	*BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(base *BaseHandler, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   base,
		courseService: courseService,
	}
}

func (h *CourseHandler) RegisterRoutes(r *gin.RouterGroup) {
	courses := r.Group("/courses")
	courses.Use(middleware.AuthMiddleware())
	{
		courses.GET("", h.ListCourses)
		courses.GET("/:courseId", h.GetCourse)
	}

	teacher := r.Group("")
	teacher.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleTeacher, models.UserRoleAdmin))
	{
		teacher.POST("/courses", h.CreateCourse)
		teacher.POST("/assignments", h.CreateAssignment)
		teacher.PUT("/submissions/:submissionId/grade", h.GradeSubmission)
		teacher.POST("/quiz-results", h.RecordQuizResult)
	}

	student := r.Group("")
	student.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleStudent))
	{
		student.POST("/submissions", h.SubmitAssignment)
	}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	course, err := h.courseService.CreateCourse(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	course, err := h.courseService.GetCourse(c.Param("courseId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	page, pageSize := ParsePagination(c)

	courses, total, err := h.courseService.ListCourses(page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	resp := dto.CourseListResponse{
		Courses: make([]dto.CourseResponse, 0, len(courses)),
		Total:   total,
	}
	for _, course := range courses {
		resp.Courses = append(resp.Courses, dto.CourseResponse{
			ID:          course.ID,
			Title:       course.Title,
			Description: course.Description,
			TeacherID:   course.TeacherID,
			BatchID:     course.BatchID,
			CreatedAt:   course.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CourseHandler) CreateAssignment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAssignmentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	assignment, err := h.courseService.CreateAssignment(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

func (h *CourseHandler) SubmitAssignment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubmissionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	submission, err := h.courseService.SubmitAssignment(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

func (h *CourseHandler) GradeSubmission(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.GradeSubmissionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.courseService.GradeSubmission(userID, c.Param("submissionId"), req.Grade); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "graded"})
}

func (h *CourseHandler) RecordQuizResult(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RecordQuizResultRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.courseService.RecordQuizResult(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
