package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/util"
)

// GetNotifications returns the viewer's newest notifications
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	rows, err := h.notifications.List(c.Request.Context(), userID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	unread, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": rows, "unread_count": unread})
}

// MarkNotificationRead marks one notification read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllNotificationsRead marks every unread notification read
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}
