package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUserIDFromContext extracts the authenticated user ID. When absent
// it responds 401 and returns false; callers just return.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user ID in context"})
		return "", false
	}
	return userIDStr, true
}

// OptionalUserID returns the viewer's ID, or empty for anonymous
// requests. Never writes a response.
func OptionalUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	id, _ := userID.(string)
	return id
}
