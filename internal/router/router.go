package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/windoze95/dishfinder-api/internal/config"
	"github.com/windoze95/dishfinder-api/internal/handlers"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/middleware"
)

const (
	limiterCleanupInterval = time.Minute
	limiterExpiration      = 5 * time.Minute
)

// Handlers bundles the route handlers served by the API.
type Handlers struct {
	Recipe   *handlers.RecipeHandler
	Image    *handlers.ImageHandler
	Festival *handlers.FestivalHandler
	Admin    *handlers.AdminHandler
}

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())
	r.Use(middleware.HTTPMetrics())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Dish finder API",
			"endpoints": gin.H{
				"recipes_by_ingredients": "GET /v1/recipes/by-ingredients?ingredients=...",
				"recipes_search":         "GET /v1/recipes/search?q=...",
				"recipes_from_image":     "POST /v1/recipes/from-image",
				"ingredients_detect":     "POST /v1/ingredients/detect",
				"festivals":              "GET /v1/festivals?year=&month=",
				"festival_recipes":       "GET /v1/festivals/recipes?year=&month=",
			},
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/v1")
	api.Use(middleware.RateLimitByIP(cfg.EnvVars.RateLimitRPS, limiterCleanupInterval, limiterExpiration))
	{
		// Recipe matching
		api.GET("/recipes/by-ingredients", h.Recipe.ByIngredients)
		api.GET("/recipes/search", h.Recipe.Search)
		api.POST("/recipes/from-image", h.Recipe.FromImage)

		// Ingredient detection
		api.POST("/ingredients/detect", h.Image.DetectIngredients)

		// Festivals
		api.GET("/festivals", h.Festival.ListFestivals)
		api.GET("/festivals/recipes", h.Festival.FestivalRecipes)
	}

	admin := r.Group("/v1/admin")
	admin.Use(middleware.RequireAdmin(cfg))
	{
		admin.POST("/ingest", h.Admin.Ingest)
	}

	return r
}
