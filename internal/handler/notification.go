package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustle/internal/service"
)

// NotificationHandler handles HTTP requests for in-app notifications.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /v1/notifications/:userId
func (h *NotificationHandler) List(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID := user.ID

	notifications, err := h.notificationService.List(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	unread, err := h.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkRead handles POST /v1/notifications/:userId/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/:userId/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /v1/notifications/:userId
func (h *NotificationHandler) Clear(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	if err := h.notificationService.Clear(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
