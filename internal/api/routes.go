package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title DevPulse Sync API
// @version 1.0
// @description API for syncing GitHub activity and reading sync state
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// SetupRouter configures the API routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users/:id")
		{
			users.POST("/sync", h.TriggerSync)
			users.GET("/sync-jobs", h.ListSyncJobs)
			users.GET("/repositories", h.ListRepositories)
			users.GET("/stats", h.GetUserStats)
		}

		v1.GET("/sync-jobs/:id", h.GetSyncJob)
		v1.GET("/repositories/:id/commits", h.GetRepositoryCommits)
	}

	return r
}
