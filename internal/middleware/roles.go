package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/models"
)

// RequireRole ensures the authenticated user holds at least the given
// role. Admin satisfies a moderator requirement.
func RequireRole(minimum models.AppRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		userID, ok := userIDValue.(string)
		if !ok || userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_user_context"})
			c.Abort()
			return
		}

		var roles []models.UserRole
		if err := database.DB.Where("user_id = ?", userID).Find(&roles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "role_lookup_failed"})
			c.Abort()
			return
		}

		if !satisfies(roles, minimum) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient_role"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin is shorthand for RequireRole(models.RoleAdmin).
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

func satisfies(roles []models.UserRole, minimum models.AppRole) bool {
	rank := func(r models.AppRole) int {
		switch r {
		case models.RoleAdmin:
			return 3
		case models.RoleModerator:
			return 2
		default:
			return 1
		}
	}

	highest := rank(models.RoleUser)
	for _, r := range roles {
		if v := rank(r.Role); v > highest {
			highest = v
		}
	}
	return highest >= rank(minimum)
}
