package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/util"
	"gorm.io/gorm"
)

// LikePost records a like. Liking twice is a no-op, not an error.
// POST /api/v1/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
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

	var existing int64
	database.DB.Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusOK, gin.H{"liked": true})
		return
	}

	like := models.Like{PostID: postID, UserID: userID}
	if err := database.DB.Create(&like).Error; err != nil {
		// A concurrent like can slip past the pre-check and trip the
		// unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.RespondAlreadyExists(c, "like")
			return
		}
		util.RespondInternalError(c, "failed to like post")
		return
	}

	// Like counts feed into engagement ranking
	h.feed.InvalidateFeeds(c.Request.Context())

	if h.notifications != nil {
		h.notifications.Notify(c.Request.Context(), &models.Notification{
			UserID:  post.UserID,
			ActorID: userID,
			Type:    models.NotificationLike,
			PostID:  &postID,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"liked": true})
}

// UnlikePost removes the viewer's like
// DELETE /api/v1/posts/:id/like
func (h *Handlers) UnlikePost(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := database.DB.
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
	if err != nil {
		util.RespondInternalError(c, "failed to unlike post")
		return
	}

	h.feed.InvalidateFeeds(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"liked": false})
}

// FollowUser creates a follow edge and notifies the target
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	targetID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if targetID == userID {
		util.RespondBadRequest(c, "cannot follow yourself")
		return
	}

	var target models.Profile
	if err := database.DB.Where("user_id = ?", targetID).First(&target).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	var existing int64
	database.DB.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", userID, targetID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusOK, gin.H{"following": true})
		return
	}

	follow := models.Follow{FollowerID: userID, FollowingID: targetID}
	if err := database.DB.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.RespondAlreadyExists(c, "follow")
			return
		}
		util.RespondInternalError(c, "failed to follow user")
		return
	}

	if h.notifications != nil {
		h.notifications.Notify(c.Request.Context(), &models.Notification{
			UserID:  targetID,
			ActorID: userID,
			Type:    models.NotificationFollow,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"following": true})
}

// UnfollowUser removes the follow edge
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	targetID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := database.DB.
		Where("follower_id = ? AND following_id = ?", userID, targetID).
		Delete(&models.Follow{}).Error
	if err != nil {
		util.RespondInternalError(c, "failed to unfollow user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}

// GetFollowers lists profiles following the given user
// GET /api/v1/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	targetID := c.Param("id")

	var followerIDs []string
	err := database.DB.Model(&models.Follow{}).
		Where("following_id = ?", targetID).
		Pluck("follower_id", &followerIDs).Error
	if err != nil {
		util.RespondInternalError(c, "failed to load followers")
		return
	}

	profiles := []models.Profile{}
	if len(followerIDs) > 0 {
		if err := database.DB.Where("user_id IN ?", followerIDs).Find(&profiles).Error; err != nil {
			util.RespondInternalError(c, "failed to load profiles")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"followers": profiles})
}

// GetFollowing lists profiles the given user follows
// GET /api/v1/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	targetID := c.Param("id")

	var followingIDs []string
	err := database.DB.Model(&models.Follow{}).
		Where("follower_id = ?", targetID).
		Pluck("following_id", &followingIDs).Error
	if err != nil {
		util.RespondInternalError(c, "failed to load following")
		return
	}

	profiles := []models.Profile{}
	if len(followingIDs) > 0 {
		if err := database.DB.Where("user_id IN ?", followingIDs).Find(&profiles).Error; err != nil {
			util.RespondInternalError(c, "failed to load profiles")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"following": profiles})
}
