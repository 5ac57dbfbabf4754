package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/util"
)

// GetForYouFeed returns posts ranked by engagement score
// GET /api/v1/feed/for-you
func (h *Handlers) GetForYouFeed(c *gin.Context) {
	viewerID := util.OptionalUserID(c)

	items, err := h.feed.FetchForYou(c.Request.Context(), viewerID)
	if err != nil {
		// The composer degrades to empty; the client renders the error
		// state from the flag, not from a failed request
		c.JSON(http.StatusOK, gin.H{"posts": items, "degraded": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items})
}

// GetFollowingFeed returns chronological posts from followed authors
// GET /api/v1/feed/following
func (h *Handlers) GetFollowingFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	items, err := h.feed.FetchFollowing(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"posts": items, "degraded": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items})
}
