package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/handlers"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/models"
	"github.com/sinyokoene/23plusone-happiness-scan-sub000/internal/validity"
)

// Setup builds the gin engine with recovery, request logging, security
// headers and the validity API routes.
func Setup(log *zap.Logger, catalog *models.ScaleCatalog) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	engine := validity.NewEngine(log, catalog)
	cache := validity.NewTTLCache(64)
	validityHandler := handlers.NewValidityHandler(log, engine, cache)
	chartsHandler := handlers.NewChartsHandler(log, validityHandler)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/validity", validityHandler.Analyze)
		api.GET("/validity/roc-chart", chartsHandler.ROCChart)
		api.GET("/validity/scatter-chart", chartsHandler.ScatterChart)
	}

	return router
}
