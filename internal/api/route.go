package api

import (
	"Opportune/internal/api/middleware"
	"Opportune/internal/pkg/logger"
	"Opportune/internal/pkg/metrics"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, logIndex string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, logIndex)

	r.GET("/metrics", metrics.Handler())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		dedupGroup := apiGroup.Group("/dedup")
		{
			dedupGroup.POST("/post", group.DedupHandler.CheckPost)
			dedupGroup.POST("/opportunity", group.DedupHandler.CheckOpportunity)
		}

		ingestGroup := apiGroup.Group("/ingest")
		{
			ingestGroup.POST("/post", group.IngestHandler.IngestPost)
			ingestGroup.POST("/opportunity", group.IngestHandler.IngestOpportunity)
		}

		clusterGroup := apiGroup.Group("/clusters")
		{
			clusterGroup.GET("", group.ClusterHandler.List)
			clusterGroup.POST("/run", group.ClusterHandler.RunPass)
			clusterGroup.POST("/signals/run", group.ClusterHandler.RunSignalPass)
		}

		maintenanceGroup := apiGroup.Group("/maintenance")
		{
			maintenanceGroup.POST("/cleanup-duplicates", group.DedupHandler.CleanupDuplicates)
		}
	}

	return r
}
