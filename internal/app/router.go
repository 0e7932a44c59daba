package app

import (
	"complaint_tracker_backend/docs"
	"complaint_tracker_backend/internal/middleware"
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, validator middleware.TokenValidator, activity middleware.UserActivityRepo) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. public
	a.registerPublicRoutes(router, c)

	// 2. everything below needs a bearer token
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(validator), middleware.ActivityMiddleware(activity))
	{
		authGroup.GET("/auth/me", c.auth.Me)
		authGroup.POST("/auth/logout", c.auth.Logout)

		a.registerComplaintRoutes(authGroup, c)
		a.registerFeedbackRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerComplaintRoutes(group *gin.RouterGroup, c *controllers) {
	complaints := group.Group("/complaints")
	{
		complaints.POST("", c.complaint.Create)
		complaints.GET("", c.complaint.List)
		complaints.GET("/resolved", c.complaint.ListResolved)
		complaints.GET("/user/:userId", c.complaint.ListByUser)
		complaints.GET("/:id", c.complaint.Get)
		complaints.PUT("/:id", c.complaint.Update)
		complaints.DELETE("/:id", c.complaint.Delete)
		complaints.PUT("/:id/update-status", c.complaint.TransitionStatus)
		complaints.GET("/:id/status-history", c.complaint.History)

		// plain setters; jurisdiction is still checked per complaint
		staff := complaints.Group("")
		staff.Use(middleware.RoleMiddleware(model.Warden, model.Faculty, model.Admin))
		{
			staff.PUT("/:id/status", c.complaint.UpdateStatus)
			staff.PUT("/:id/priority", c.complaint.UpdatePriority)
		}
	}
}

func (a *App) registerFeedbackRoutes(group *gin.RouterGroup, c *controllers) {
	feedback := group.Group("/feedback/complaint")
	{
		feedback.POST("/:id", c.feedback.Submit)
		feedback.GET("/:id", c.feedback.Get)
		feedback.GET("/:id/status", c.feedback.Status)
	}
}
