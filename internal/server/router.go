package server

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/regwatch-backend/internal/handlers"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/middleware"
)

type RouterConfig struct {
	Log               *logger.Logger
	ListingHandler    *handlers.ListingHandler
	ModerationHandler *handlers.ModerationHandler
	FlagHandler       *handlers.FlagHandler
	AppealHandler     *handlers.AppealHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(middleware.CORS())

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Listings
		api.GET("/products", cfg.ListingHandler.List)
		api.GET("/products/:id", cfg.ListingHandler.Get)
		api.POST("/products", cfg.ListingHandler.Create)
		api.PATCH("/products/:id", cfg.ListingHandler.Update)
		api.POST("/products/:id/recheck", cfg.ModerationHandler.Recheck)

		// Flags
		api.GET("/flags", cfg.FlagHandler.ListOpen)
		api.POST("/flags/:id/reviewed", cfg.FlagHandler.MarkReviewed)

		// Appeals
		api.GET("/appeals", cfg.AppealHandler.ListAll)
		api.POST("/appeals", cfg.AppealHandler.File)
		api.POST("/appeals/:id/resolve", cfg.AppealHandler.Resolve)

		// Moderation
		api.POST("/moderation/ban", cfg.ModerationHandler.Ban)
		api.POST("/moderation/reinstate", cfg.ModerationHandler.Reinstate)
	}

	return router
}
