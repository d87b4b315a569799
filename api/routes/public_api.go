package routes

import (
	"socialgw/api/handlers"
	"socialgw/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func PublicApi(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := router.Group("/api/")
	{
		// Анонимные маршруты
		api.POST("auth", handlers.Login)
		api.POST("register", handlers.Register)

		// Все остальное требует session cookie
		authed := api.Group("", middleware.SessionMiddleware())
		{
			authed.POST("auth/logout", handlers.Logout)

			authed.GET("auth/postFeed", handlers.GetFeed)
			authed.GET("auth/postFeed/cached", handlers.GetCachedFeed)
			authed.POST("posts", handlers.CreatePost)

			// Социальный граф
			authed.POST("users/follow", handlers.FollowUser)
			authed.POST("users/unfollow", handlers.UnfollowUser)
			authed.POST("users/follower", handlers.GetFollowers)
			authed.POST("users/following", handlers.GetFollowing)
			authed.POST("users/suggestions", handlers.GetSuggestions)
			authed.POST("profile/followersCount", handlers.GetFollowersCount)

			authed.GET("ws/notifications", handlers.WSNotifications)
		}
	}
}
