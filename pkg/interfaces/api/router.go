// Package api exposes method views over HTTP with gin
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine. mode "release" switches gin to release mode.
func NewRouter(h *MethodHandler, logger *zap.Logger, mode string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/bom", h.BOMFromTree)
		v1.POST("/routing", h.RoutingFromTree)

		methods := v1.Group("/methods/:domain")
		{
			methods.GET("/validate", h.Validate)
			methods.GET("/:id/bom", h.MethodBOM)
			methods.GET("/:id/routing", h.MethodRouting)
		}
	}

	return router
}
