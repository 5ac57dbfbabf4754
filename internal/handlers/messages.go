package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/util"
)

// ResolveConversation finds or creates the direct conversation with
// another user
// POST /api/v1/conversations/resolve
func (h *Handlers) ResolveConversation(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	conversationID, found, err := h.messaging.Resolve(c.Request.Context(), userID, req.UserID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	status := http.StatusOK
	if !found {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"conversation_id": conversationID, "found": found})
}

// ListConversations returns the viewer's inbox
// GET /api/v1/conversations
func (h *Handlers) ListConversations(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	previews, err := h.messaging.ListConversations(c.Request.Context(), userID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": previews})
}

// GetMessages returns a conversation's messages oldest first
// GET /api/v1/conversations/:id/messages
func (h *Handlers) GetMessages(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	messages, err := h.messaging.GetMessages(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage appends a message to a conversation
// POST /api/v1/conversations/:id/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		RecipientID string `json:"recipient_id" binding:"required"`
		Content     string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	message, err := h.messaging.SendMessage(c.Request.Context(), userID, c.Param("id"), req.RecipientID, req.Content)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}
