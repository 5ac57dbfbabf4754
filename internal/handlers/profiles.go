package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/util"
)

// GetProfile returns a profile by username with follower counts
// GET /api/v1/profiles/:username
func (h *Handlers) GetProfile(c *gin.Context) {
	username := strings.ToLower(c.Param("username"))

	var profile models.Profile
	if err := database.DB.Where("LOWER(username) = ?", username).First(&profile).Error; err != nil {
		util.RespondNotFound(c, "profile")
		return
	}

	var followers, following int64
	database.DB.Model(&models.Follow{}).Where("following_id = ?", profile.UserID).Count(&followers)
	database.DB.Model(&models.Follow{}).Where("follower_id = ?", profile.UserID).Count(&following)

	viewerID := util.OptionalUserID(c)
	isFollowing := false
	if viewerID != "" && viewerID != profile.UserID {
		var n int64
		database.DB.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", viewerID, profile.UserID).
			Count(&n)
		isFollowing = n > 0
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":         profile,
		"follower_count":  followers,
		"following_count": following,
		"is_following":    isFollowing,
	})
}

// UpdateProfile edits the viewer's own profile
// PATCH /api/v1/profiles/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		AvatarURL   *string `json:"avatar_url"`
		Bio         *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var profile models.Profile
	if err := database.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		util.RespondNotFound(c, "profile")
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&profile).Updates(updates).Error; err != nil {
			util.RespondInternalError(c, "failed to update profile")
			return
		}
	}

	database.DB.Where("user_id = ?", userID).First(&profile)
	c.JSON(http.StatusOK, profile)
}

// SearchProfiles finds profiles by username or display name substring
// GET /api/v1/profiles?q=
func (h *Handlers) SearchProfiles(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"profiles": []models.Profile{}})
		return
	}

	pattern := "%" + strings.ToLower(q) + "%"
	var profiles []models.Profile
	err := database.DB.
		Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern).
		Limit(20).
		Find(&profiles).Error
	if err != nil {
		util.RespondInternalError(c, "failed to search profiles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}
