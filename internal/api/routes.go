package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with CORS for the given origins, "*" allows any
func NewRouter(handler *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	SetupRoutes(router, handler)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/states", handler.GetStates)
		api.GET("/prices", handler.GetPrices)
		api.GET("/suggestions/crops", handler.CropSuggestions)

		api.POST("/sessions", handler.CreateSession)
		sessions := api.Group("/sessions/:id")
		{
			sessions.DELETE("", handler.DeleteSession)
			sessions.POST("/device-location", handler.SetDeviceLocation)
			sessions.GET("/suggestions/locations", handler.LocationSuggestions)
			sessions.POST("/search", handler.Search)
			sessions.GET("/progress", handler.Progress)
			sessions.POST("/cancel", handler.Cancel)
		}
	}
}
