package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/order-notifier/internal/api/handlers/notification"
	"github.com/aliskhannn/order-notifier/internal/api/middlewares"
)

func New(handler *notification.Handler) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	e.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := e.Group("/api/notifications")
	{
		api.POST("", handler.Create)
		api.GET("", handler.GetAll)
		api.GET("/:id", handler.GetByID)
		api.GET("/:id/status", handler.GetStatus)
	}

	return e
}
