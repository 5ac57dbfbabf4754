package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/auth"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/util"
)

// Register creates a new account
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Register(req)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates an existing account
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user's profile and effective role
// GET /api/v1/auth/me
func (h *Handlers) Me(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var profile models.Profile
	if err := database.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		util.RespondNotFound(c, "profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"role":    h.auth.EffectiveRole(userID),
	})
}
