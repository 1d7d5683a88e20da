package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edulink_backend/internal/middleware"
	"edulink_backend/internal/services"
	"edulink_backend/internal/services/dto"
)

type ActivityHandler struct {
	*BaseHandler
	activityService services.ActivityService
}

func NewActivityHandler(base *BaseHandler, activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     base,
		activityService: activityService,
	}
}

func (h *ActivityHandler) RegisterRoutes(r *gin.RouterGroup) {
	activity := r.Group("/activity")
	activity.Use(middleware.AuthMiddleware())
	{
		activity.POST("", h.TrackActivity)
	}
}

// TrackActivity always answers 202: recording is best-effort and a
// storage failure must not surface to the client.
func (h *ActivityHandler) TrackActivity(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.TrackActivityRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	h.activityService.Track(userID, req.Activity, req.Metadata)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
