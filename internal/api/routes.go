package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"immoeliza/server/internal/database"
)

func SetupRoutes(router *gin.Engine, db *database.Database, runner CleaningRunner, logger *logrus.Logger) {
	handler := NewHandler(db, runner, logger)

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
	}))

	api := router.Group("/api")
	{
		api.GET("/listings", handler.GetListings)
		api.GET("/stats", handler.GetStats)
		api.GET("/provinces", handler.GetProvinces)
		api.GET("/provinces/:province", handler.GetProvince)
		api.GET("/runs", handler.GetRuns)
		api.POST("/clean", handler.TriggerClean)
	}
}
