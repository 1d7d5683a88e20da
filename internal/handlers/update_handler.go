package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"edulink_backend/internal/middleware"
	"edulink_backend/internal/services"
)

type UpdateHandler struct {
	*BaseHandler
	updateService services.RealtimeUpdateService
}

func NewUpdateHandler(base *BaseHandler, updateService services.RealtimeUpdateService) *UpdateHandler {
	return &UpdateHandler{
		BaseHandler:   base,
		updateService: updateService,
	}
}

func (h *UpdateHandler) RegisterRoutes(r *gin.RouterGroup) {
	updates := r.Group("/updates")
	updates.Use(middleware.AuthMiddleware())
	{
		updates.GET("", h.ListRecent)
		updates.PUT("/:updateId/read", h.MarkAsRead)
	}
}

func (h *UpdateHandler) ListRecent(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit := ParseQueryInt(c, "limit", 50)

	updates, err := h.updateService.ListRecent(userID, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

func (h *UpdateHandler) MarkAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.updateService.MarkAsRead(userID, c.Param("updateId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
