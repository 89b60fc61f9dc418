package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streetsight/streetsight/internal/api"
	"github.com/streetsight/streetsight/internal/app"
)

func (s *Server) SetupRoutes(app *app.App) {
	s.ginEngine.GET("/", handlerWrapper(app, api.Root))

	// Liveness probe, separate from model readiness
	s.ginEngine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.ginEngine.GET("/health", handlerWrapper(app, api.GetHealth))

	apiV1 := s.ginEngine.Group("/api/v1")

	apiV1.POST("/predict", handlerWrapper(app, api.PredictImage))
	apiV1.POST("/predict/batch", handlerWrapper(app, api.PredictBatch))
	apiV1.GET("/classes", handlerWrapper(app, api.GetClasses))
}

func handlerWrapper(app *app.App, f func(c *gin.Context)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("app", app)
		f(ctx)
	}
}
