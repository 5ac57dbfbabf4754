package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/util"
)

// AdminListPosts returns one page of the moderation table
// GET /api/v1/admin/posts?page=&flagged=
func (h *Handlers) AdminListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	flaggedOnly := c.Query("flagged") == "true"

	result, err := h.moderation.ListPosts(c.Request.Context(), flaggedOnly, page)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AdminFlagPost hides a post from public view
// POST /api/v1/admin/posts/:id/flag
func (h *Handlers) AdminFlagPost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Reason is optional; an empty body is fine
	_ = c.ShouldBindJSON(&req)

	post, err := h.moderation.FlagPost(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	h.feed.InvalidateFeeds(c.Request.Context())
	c.JSON(http.StatusOK, post)
}

// AdminUnflagPost restores a post to public view
// POST /api/v1/admin/posts/:id/unflag
func (h *Handlers) AdminUnflagPost(c *gin.Context) {
	post, err := h.moderation.UnflagPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	h.feed.InvalidateFeeds(c.Request.Context())
	c.JSON(http.StatusOK, post)
}

// AdminStats reports table counts for the console dashboard, plus
// seven-day signup and posting activity. The count queries run
// concurrently.
// GET /api/v1/admin/stats
func (h *Handlers) AdminStats(c *gin.Context) {
	type statResult struct {
		name  string
		count int64
		err   error
	}

	counts := map[string]interface{}{
		"users":         &models.User{},
		"posts":         &models.Post{},
		"flagged_posts": &models.Post{},
		"comments":      &models.Comment{},
		"likes":         &models.Like{},
		"follows":       &models.Follow{},
		"messages":      &models.Message{},
		"new_users_7d":  &models.User{},
		"new_posts_7d":  &models.Post{},
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)

	resultsChan := make(chan statResult, len(counts))
	for name, model := range counts {
		go func(name string, model interface{}) {
			var n int64
			q := database.DB.Model(model)
			switch name {
			case "flagged_posts":
				q = q.Where("is_flagged = ?", true)
			case "new_users_7d", "new_posts_7d":
				q = q.Where("created_at >= ?", weekAgo)
			}
			err := q.Count(&n).Error
			resultsChan <- statResult{name: name, count: n, err: err}
		}(name, model)
	}

	stats := gin.H{}
	for range counts {
		r := <-resultsChan
		if r.err != nil {
			util.RespondInternalError(c, "failed to compute stats")
			return
		}
		stats[r.name] = r.count
	}

	c.JSON(http.StatusOK, stats)
}

// AdminListUsers lists every profile with its effective role, highest
// role winning.
// GET /api/v1/admin/users
func (h *Handlers) AdminListUsers(c *gin.Context) {
	var profiles []models.Profile
	if err := database.DB.Order("username ASC").Find(&profiles).Error; err != nil {
		util.RespondInternalError(c, "failed to load users")
		return
	}

	var roles []models.UserRole
	if err := database.DB.Find(&roles).Error; err != nil {
		util.RespondInternalError(c, "failed to load roles")
		return
	}

	rank := map[models.AppRole]int{
		models.RoleUser:      0,
		models.RoleModerator: 1,
		models.RoleAdmin:     2,
	}
	effective := make(map[string]models.AppRole, len(roles))
	for _, r := range roles {
		if current, ok := effective[r.UserID]; !ok || rank[r.Role] > rank[current] {
			effective[r.UserID] = r.Role
		}
	}

	type userRow struct {
		models.Profile
		Role models.AppRole `json:"role"`
	}
	rows := make([]userRow, len(profiles))
	for i, p := range profiles {
		role := models.RoleUser
		if r, ok := effective[p.UserID]; ok {
			role = r
		}
		rows[i] = userRow{Profile: p, Role: role}
	}

	c.JSON(http.StatusOK, gin.H{"users": rows})
}

// AdminGrantRole assigns a role to a user
// POST /api/v1/admin/users/:id/roles
func (h *Handlers) AdminGrantRole(c *gin.Context) {
	targetID := c.Param("id")

	var req struct {
		Role models.AppRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	switch req.Role {
	case models.RoleAdmin, models.RoleModerator, models.RoleUser:
	default:
		util.RespondValidationError(c, "role", "unknown role")
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	var existing int64
	database.DB.Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", targetID, req.Role).
		Count(&existing)
	if existing == 0 {
		role := models.UserRole{UserID: targetID, Role: req.Role}
		if err := database.DB.Create(&role).Error; err != nil {
			util.RespondInternalError(c, "failed to grant role")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "role": req.Role})
}

// AdminRevokeRole removes a role from a user
// DELETE /api/v1/admin/users/:id/roles/:role
func (h *Handlers) AdminRevokeRole(c *gin.Context) {
	targetID := c.Param("id")
	role := models.AppRole(c.Param("role"))

	err := database.DB.
		Where("user_id = ? AND role = ?", targetID, role).
		Delete(&models.UserRole{}).Error
	if err != nil {
		util.RespondInternalError(c, "failed to revoke role")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "revoked": role})
}
