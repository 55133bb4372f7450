package api

import (
	"net/http"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	postService service.PostService,
	notificationService service.NotificationService,
	profileService service.ProfileService,
	fieldService service.FieldService,
	mediaService service.MediaService,
) {

	authHandler := NewAuthHandler(authService)
	postHandler := NewPostHandler(postService)
	notificationHandler := NewNotificationHandler(notificationService)
	profileHandler := NewProfileHandler(profileService)
	fieldHandler := NewFieldHandler(fieldService)
	mediaHandler := NewMediaHandler(mediaService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Profile Routes ---
		protected.GET("/me", profileHandler.GetMe)
		protected.PUT("/me", profileHandler.UpdateMe)
		protected.GET("/me/rainfall/:year", profileHandler.RainfallYear)
		protected.DELETE("/me/rainfall/:year", profileHandler.ClearYearRainfall)
		protected.GET("/users/:userId", profileHandler.GetProfile)

		// --- Feed / Post Routes ---
		postGroup := protected.Group("/posts")
		{
			postGroup.POST("", postHandler.CreatePost)
			postGroup.POST("/rain-gauge", postHandler.CreateRainGauge)
			postGroup.GET("/feed/:room", postHandler.GetFeed)
			postGroup.DELETE("/:postId", postHandler.DeletePost)
			postGroup.POST("/:postId/like", postHandler.ToggleLike)
			postGroup.POST("/:postId/comments", postHandler.AddComment)
			postGroup.GET("/:postId/comments", postHandler.GetComments)
		}
		protected.POST("/comments/:commentId/like", postHandler.LikeComment)

		// --- Field / Cost Tracking Routes ---
		fieldGroup := protected.Group("/fields")
		{
			fieldGroup.POST("", fieldHandler.CreateField)
			fieldGroup.GET("", fieldHandler.ListFields)
			fieldGroup.DELETE("/:fieldId", fieldHandler.DeleteField)
			fieldGroup.POST("/:fieldId/costs", fieldHandler.RecordCost)
		}
		costGroup := protected.Group("/field-costs")
		{
			costGroup.GET("/:year", fieldHandler.YearTotals)
			costGroup.DELETE("/:year", fieldHandler.ClearYear)
		}

		// --- Notification Routes ---
		notificationGroup := protected.Group("/notifications")
		{
			notificationGroup.GET("", notificationHandler.List)
			notificationGroup.GET("/unread", notificationHandler.UnreadCount)
			notificationGroup.POST("/:notificationId/read", notificationHandler.MarkRead)
			notificationGroup.POST("/read-all", notificationHandler.MarkAllRead)
		}

		// --- Media Routes ---
		mediaGroup := protected.Group("/media")
		{
			mediaGroup.POST("/upload", mediaHandler.Upload)
			mediaGroup.POST("/upload/file", mediaHandler.UploadFile)
			mediaGroup.POST("/upload/batch", mediaHandler.UploadBatch)
			mediaGroup.GET("/history", mediaHandler.History)
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/users/:userId/ban", profileHandler.SetBanned)
		}
	}
}
