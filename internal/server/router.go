package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wallet-session/internal/handler"
	"wallet-session/pkg/monitor"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(h *handler.SessionHandler) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/session", h.GetSession)
		api.GET("/session/stream", h.StreamSession)

		api.POST("/wallet/connect", h.ConnectWallet)

		api.PUT("/form", h.SetForm)
		api.PATCH("/form/:field", h.ChangeField)

		api.POST("/transactions", h.SendTransaction)
		api.GET("/transactions", h.ListTransactions)
	}

	return r
}
