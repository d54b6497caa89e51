package router

import (
	"net/http"

	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/interfaces/http/handler"
	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// New builds the gin engine with the middleware chain and all routes.
func New(cfg *config.Config, log *zap.Logger, reconciliation *handler.ReconciliationHandler) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logger.GinMiddleware(log))
	r.Use(logger.Recovery(log))
	r.Use(middleware.CORS(cfg.HTTP.CORSAllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		rec := v1.Group("/reconciliation")
		{
			rec.POST("/run", reconciliation.Run)
			rec.GET("/runs/:id", reconciliation.Status)
			rec.GET("/runs/:id/report", reconciliation.Result)
		}
	}

	return r
}
