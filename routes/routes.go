package routes

import (
	"github.com/gin-gonic/gin"

	"report-approval-api/controllers"
	"report-approval-api/middleware"
	"report-approval-api/utils"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)
			public.POST("/register", controllers.Register)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Report Approval API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", controllers.GetProfile)

			// Reports and the approval workflow
			reports := protected.Group("/reports")
			{
				reports.GET("", controllers.GetReports)
				reports.GET("/pending-count", controllers.GetPendingCount)
				reports.GET("/:id", controllers.GetReport)

				reports.POST("", middleware.RequireRoles(utils.RoleEngineer, utils.RoleAdmin), controllers.CreateReport)
				reports.PUT("/:id/status", controllers.UpdateReportStatus)
				reports.POST("/:id/approve",
					middleware.RequireRoles(utils.RoleTechnicalManager, utils.RoleProjectManager),
					controllers.ApproveReport)
				reports.POST("/:id/generate", controllers.GenerateReportDocument)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
				notifications.POST("/bulk", middleware.RequireRoles(utils.RoleAdmin), controllers.SendBulkNotification)
			}

			// Async job status
			protected.GET("/tasks/:id", controllers.GetTaskStatus)

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)

			// User administration
			users := protected.Group("/users", middleware.RequireRoles(utils.RoleAdmin))
			{
				users.GET("/by-role", controllers.GetUsersByRole)
				users.PUT("/:id/status", controllers.UpdateUserStatus)
			}
		}
	}
}
