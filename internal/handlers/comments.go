package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/realtime"
	"github.com/lefthq/left-backend/internal/util"
)

// CreateComment adds a comment to a post and notifies the author
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	comment := models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		util.RespondInternalError(c, "failed to create comment")
		return
	}

	database.DB.Preload("Author").First(&comment, "id = ?", comment.ID)

	// Comment counts feed into engagement ranking
	h.feed.InvalidateFeeds(c.Request.Context())

	if h.notifications != nil {
		h.notifications.Notify(c.Request.Context(), &models.Notification{
			UserID:    post.UserID,
			ActorID:   userID,
			Type:      models.NotificationComment,
			PostID:    &postID,
			CommentID: &comment.ID,
		})
	}
	h.bus.Publish(post.UserID, realtime.InsertEvent{Table: "comments", Key: comment.ID, Payload: comment})

	c.JSON(http.StatusCreated, comment)
}

// GetComments lists a post's comments oldest first
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	postID := c.Param("id")

	var comments []models.Comment
	err := database.DB.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		util.RespondInternalError(c, "failed to load comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// DeleteComment removes a comment. The comment's author, the post's
// author, or an admin may delete.
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	commentID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		util.RespondNotFound(c, "comment")
		return
	}

	allowed := comment.UserID == userID
	if !allowed {
		var post models.Post
		if err := database.DB.First(&post, "id = ?", comment.PostID).Error; err == nil {
			allowed = post.UserID == userID
		}
	}
	if !allowed {
		allowed = h.auth.EffectiveRole(userID) == models.RoleAdmin
	}
	if !allowed {
		util.RespondForbidden(c, "cannot delete this comment")
		return
	}

	if err := database.DB.Delete(&comment).Error; err != nil {
		util.RespondInternalError(c, "failed to delete comment")
		return
	}

	h.feed.InvalidateFeeds(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
