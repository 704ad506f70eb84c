package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/config"
	"github.com/fsdevblog/shortlinks/internal/controllers/middlewares"
)

type RouterParams struct {
	LinkService LinkService
	PingService ConnectionChecker
	Clicks      ClickDispatcher
	AppConf     config.Config
	Logger      *zap.Logger
}

func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(middlewares.GzipMiddleware())
	r.Use(middlewares.VisitorCookieMiddleware([]byte(params.AppConf.VisitorJWTSecret)))

	shortURLController := NewShortURLController(params.LinkService, params.AppConf.BaseURL, params.Logger)
	redirectController := NewRedirectController(
		params.LinkService, params.Clicks, params.AppConf.BaseURL, params.Logger,
	)
	pingController := NewPingController(params.PingService)

	r.GET("/ping", pingController.Ping)

	api := r.Group("/api/shorturls")
	api.POST("", shortURLController.Create)
	api.GET("", shortURLController.List)
	api.GET("/:shortCode", shortURLController.Stats)
	api.DELETE("/:shortCode", shortURLController.Delete)
	api.PATCH("/:shortCode/deactivate", shortURLController.Deactivate)

	r.GET("/:shortCode", redirectController.Redirect)
	r.GET("/:shortCode/info", redirectController.Info)
	return r
}
