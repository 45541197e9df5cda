package routes

import (
	"doi-frontend/api/controllers"
	"doi-frontend/api/middlewares"
	"doi-frontend/api/static"
	"doi-frontend/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitRoute 注册页面、json 接口、websocket 和 /metrics；origins 为跨域白名单
func InitRoute(e *gin.Engine, v *view.View, gatherer prometheus.Gatherer, origins []string) *gin.Engine {
	e.SetHTMLTemplate(static.Templates())
	e.Use(middlewares.Logger(), middlewares.Cors(origins))

	objectController := controllers.ObjectController{View: v}
	e.GET("/", objectController.Index)
	e.POST("/objects", objectController.Register)
	e.POST("/objects/lookup", objectController.Lookup)
	e.GET("/objects/:id", objectController.Get)

	api := e.Group("/api")
	api.GET("/state", objectController.State)

	wsController := controllers.WsController{View: v, Origins: origins}
	e.GET("/ws", wsController.State)

	if gatherer != nil {
		e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return e
}
