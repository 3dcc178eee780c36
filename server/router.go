package server

import (
	"time"

	httpHandler "trend-finder/interfaces/http"
	"trend-finder/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var allowedOrigins = []string{"http://localhost:4200", "http://localhost:10001", "https://localhost:10001"}

func InitiateRouter(
	researchHandler httpHandler.IResearchHandler,
	presetHandler httpHandler.IPresetHandler,
	historyHandler httpHandler.IHistoryHandler,
	healthHandler httpHandler.IHealthHandler,
	secretKey string,
) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if err := httpHandler.LoadTemplates(router); err != nil {
		return nil, err
	}

	router.GET("/healthz", healthHandler.Healthz)

	// HTML pages
	router.GET("/", researchHandler.Index)
	router.GET("/research", researchHandler.ResearchPage)

	api := router.Group("api")
	api.GET("/research", researchHandler.ResearchJSON)
	api.GET("/research.csv", researchHandler.ResearchCSV)
	api.GET("/history", historyHandler.Recent)

	presets := api.Group("/presets")
	{
		presets.GET("", presetHandler.List)
		presets.GET("/:id", presetHandler.Get)
		presets.POST("", middleware.Auth(secretKey), presetHandler.Create)
		presets.DELETE("/:id", middleware.Auth(secretKey), presetHandler.Delete)
	}

	return router, nil
}
