package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edulink_backend/internal/middleware"
	"edulink_backend/internal/models"
	"edulink_backend/internal/services"
)

type AnalyticsHandler struct {
	*BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(base *BaseHandler, analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      base,
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(r *gin.RouterGroup) {
	analytics := r.Group("/analytics")
	analytics.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleTeacher, models.UserRoleAdmin))
	{
		analytics.GET("/batch/:batchId", h.GetBatchAnalytics)
		analytics.GET("/trends/:batchId", h.GetSubmissionTrend)
	}
}

func (h *AnalyticsHandler) GetBatchAnalytics(c *gin.Context) {
	snapshot, err := h.analyticsService.ComputeBatchAnalytics(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *AnalyticsHandler) GetSubmissionTrend(c *gin.Context) {
	days := ParseQueryInt(c, "days", 30)

	trend, err := h.analyticsService.ComputeTrend(c.Request.Context(), c.Param("batchId"), days)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, trend)
}
