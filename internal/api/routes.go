package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/card-resolver/internal/api/handlers"
	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/pricing"
	"github.com/codyseavey/card-resolver/internal/services"
)

// Dependencies are the services the HTTP surface is built on
type Dependencies struct {
	Identifier     services.Identifier
	Store          catalog.Store
	Pricing        *pricing.Service
	Valuation      *services.ValuationService
	PriceCache     *handlers.PriceCache
	AllowedOrigins []string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(MetricsMiddleware())

	// CORS configuration
	config := cors.DefaultConfig()
	if len(deps.AllowedOrigins) > 0 {
		config.AllowOrigins = deps.AllowedOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader}
	config.ExposeHeaders = []string{RequestIDHeader, "X-Cache"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	identifyHandler := handlers.NewIdentifyHandler(deps.Identifier)
	catalogHandler := handlers.NewCatalogHandler(deps.Store)
	priceHandler := handlers.NewPriceHandler(deps.Pricing, deps.PriceCache)
	valuationHandler := handlers.NewValuationHandler(deps.Valuation)

	api := router.Group("/api")
	{
		identify := api.Group("/identify")
		{
			identify.POST("/batch", identifyHandler.IdentifyBatch)
			identify.POST("/:game", identifyHandler.Identify)
		}

		catalogRoutes := api.Group("/catalog/:game")
		{
			catalogRoutes.GET("/search", catalogHandler.SearchCards)
			catalogRoutes.GET("/:id/variants", catalogHandler.GetVariants)
		}

		prices := api.Group("/prices")
		{
			prices.POST("/match", priceHandler.MatchPrice)
			prices.POST("/estimate", priceHandler.Estimate)
			prices.GET("/:game/parallels", priceHandler.GetParallels)
			prices.GET("/:game/products/:id", priceHandler.GetProductPrices)
		}

		api.POST("/valuate/:game", valuationHandler.Valuate)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "ok",
			"pricing_enabled":  deps.Pricing != nil && deps.Pricing.Enabled(),
			"price_cache_size": deps.PriceCache.Len(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
