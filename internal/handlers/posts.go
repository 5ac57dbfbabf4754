package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/realtime"
	"github.com/lefthq/left-backend/internal/util"
)

// CreatePost creates a new post
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Content  *string `json:"content"`
		ImageURL *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	hasText := req.Content != nil && strings.TrimSpace(*req.Content) != ""
	if !hasText && (req.ImageURL == nil || *req.ImageURL == "") {
		util.RespondValidationError(c, "content", "a post needs text or an image")
		return
	}

	post := models.Post{
		UserID:   userID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		util.RespondInternalError(c, "failed to create post")
		return
	}

	database.DB.Preload("Author").First(&post, "id = ?", post.ID)

	h.feed.InvalidateFeeds(c.Request.Context())
	h.bus.PublishAll(realtime.InsertEvent{Table: "posts", Key: post.ID, Payload: post})

	c.JSON(http.StatusCreated, post)
}

// GetPost returns a single post. Flagged posts stay visible to their
// author and to admins only.
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	postID := c.Param("id")
	viewerID := util.OptionalUserID(c)

	var post models.Post
	if err := database.DB.Preload("Author").First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	if post.IsFlagged && !h.canSeeFlagged(viewerID, post.UserID) {
		util.RespondNotFound(c, "post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post. Only the author or an admin may delete.
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	if post.UserID != userID && h.auth.EffectiveRole(userID) != models.RoleAdmin {
		util.RespondForbidden(c, "only the author can delete this post")
		return
	}

	if err := database.DB.Delete(&post).Error; err != nil {
		util.RespondInternalError(c, "failed to delete post")
		return
	}

	h.feed.InvalidateFeeds(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetUserPosts returns a profile's posts. Flagged posts appear only
// when the viewer is the author or an admin.
// GET /api/v1/users/:id/posts
func (h *Handlers) GetUserPosts(c *gin.Context) {
	targetID := c.Param("id")
	viewerID := util.OptionalUserID(c)

	q := database.DB.Preload("Author").Where("user_id = ?", targetID)
	if !h.canSeeFlagged(viewerID, targetID) {
		q = q.Where("is_flagged = ?", false)
	}

	var posts []models.Post
	if err := q.Order("created_at DESC").Find(&posts).Error; err != nil {
		util.RespondInternalError(c, "failed to load posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// canSeeFlagged reports whether the viewer may see flagged posts of
// the given author.
func (h *Handlers) canSeeFlagged(viewerID, authorID string) bool {
	if viewerID == "" {
		return false
	}
	if viewerID == authorID {
		return true
	}
	return h.auth.EffectiveRole(viewerID) == models.RoleAdmin
}
