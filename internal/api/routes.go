package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Catalog routes
		v1.GET("/catalog", handler.GetCatalog)
		v1.POST("/catalog/file", handler.ImportCatalogFile)

		// Favorite routes
		v1.GET("/favorites", handler.ListFavorites)
		v1.POST("/favorites", handler.AddFavorite)
		v1.DELETE("/favorites/:key", handler.RemoveFavorite)

		// Application routes
		v1.GET("/applications", handler.ListApplications)
		v1.POST("/applications", handler.AddApplication)
		v1.GET("/applications/statistics", handler.GetStatistics)
		v1.POST("/applications/import", handler.ImportFromFavorites)
		v1.PATCH("/applications/:id", handler.UpdateApplication)
		v1.DELETE("/applications/:id", handler.DeleteApplication)
		v1.POST("/applications/:id/status", handler.SetApplicationStatus)

		// Recommender routes
		v1.GET("/recommenders", handler.ListRecommenders)
		v1.POST("/recommenders", handler.AddRecommender)

		// Deadline parsing
		v1.GET("/deadlines/parse", handler.ParseDeadline)
	}
}
