package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/lefthq/left-backend/internal/auth"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/middleware"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/realtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures SetupRouter.
type RouterOptions struct {
	AllowedOrigins []string
	Hub            *realtime.Hub
}

// SetupRouter builds the gin engine with all middleware and routes.
func SetupRouter(h *Handlers, authSvc *auth.Service, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.GinLogger())
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		if err := database.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", auth.Middleware(authSvc), h.Me)
	}

	feedGroup := api.Group("/feed")
	{
		feedGroup.GET("/for-you", auth.OptionalMiddleware(authSvc), h.GetForYouFeed)
		feedGroup.GET("/following", auth.Middleware(authSvc), h.GetFollowingFeed)
	}

	posts := api.Group("/posts")
	{
		posts.GET("/:id", auth.OptionalMiddleware(authSvc), h.GetPost)
		posts.GET("/:id/comments", h.GetComments)

		posts.Use(auth.Middleware(authSvc))
		posts.POST("", h.CreatePost)
		posts.DELETE("/:id", h.DeletePost)
		posts.POST("/:id/comments", h.CreateComment)
		posts.POST("/:id/like", h.LikePost)
		posts.DELETE("/:id/like", h.UnlikePost)
	}

	api.DELETE("/comments/:id", auth.Middleware(authSvc), h.DeleteComment)

	users := api.Group("/users")
	{
		users.GET("/:id/posts", auth.OptionalMiddleware(authSvc), h.GetUserPosts)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)

		users.Use(auth.Middleware(authSvc))
		users.POST("/:id/follow", h.FollowUser)
		users.DELETE("/:id/follow", h.UnfollowUser)
	}

	profiles := api.Group("/profiles")
	{
		profiles.GET("", h.SearchProfiles)
		profiles.PATCH("/me", auth.Middleware(authSvc), h.UpdateProfile)
		profiles.GET("/:username", auth.OptionalMiddleware(authSvc), h.GetProfile)
	}

	conversations := api.Group("/conversations")
	conversations.Use(auth.Middleware(authSvc))
	{
		conversations.POST("/resolve", h.ResolveConversation)
		conversations.GET("", h.ListConversations)
		conversations.GET("/:id/messages", h.GetMessages)
		conversations.POST("/:id/messages", h.SendMessage)
	}

	notificationsGroup := api.Group("/notifications")
	notificationsGroup.Use(auth.Middleware(authSvc))
	{
		notificationsGroup.GET("", h.GetNotifications)
		notificationsGroup.POST("/:id/read", h.MarkNotificationRead)
		notificationsGroup.POST("/read-all", h.MarkAllNotificationsRead)
	}

	admin := api.Group("/admin")
	admin.Use(auth.Middleware(authSvc))
	{
		// Moderators can work the post queue; role grants stay admin-only
		posts := admin.Group("/posts")
		posts.Use(middleware.RequireRole(models.RoleModerator))
		{
			posts.GET("", h.AdminListPosts)
			posts.POST("/:id/flag", h.AdminFlagPost)
			posts.POST("/:id/unflag", h.AdminUnflagPost)
		}

		admin.GET("/stats", middleware.RequireAdmin(), h.AdminStats)
		admin.GET("/users", middleware.RequireAdmin(), h.AdminListUsers)
		admin.POST("/users/:id/roles", middleware.RequireAdmin(), h.AdminGrantRole)
		admin.DELETE("/users/:id/roles/:role", middleware.RequireAdmin(), h.AdminRevokeRole)
	}

	if opts.Hub != nil {
		r.GET("/ws", auth.Middleware(authSvc), realtime.Handler(opts.Hub))
	}

	return r
}
