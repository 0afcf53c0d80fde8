package server

import (
	"bank-core/internal/handler"
	"bank-core/internal/middleware"
	"bank-core/internal/service/account"
	"bank-core/internal/service/auth"
	"bank-core/internal/service/transaction"
	"bank-core/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services 路由所需的业务服务集合
type Services struct {
	Auth        *auth.Service
	Account     *account.Service
	Transaction *transaction.Service
}

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(svcs Services) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware()) // 监控埋点

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // 暴露给 Prometheus

	authHandler := handler.NewAuthHandler(svcs.Auth)
	accountHandler := handler.NewAccountHandler(svcs.Account)
	txnHandler := handler.NewTransactionHandler(svcs.Transaction)

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		// 开放接口
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/verify/:username", authHandler.Verify)

		// 以下接口需要登录态
		authed := api.Group("", middleware.Auth(svcs.Auth))
		{
			accounts := authed.Group("/accounts")
			{
				accounts.POST("", accountHandler.Create)
				accounts.GET("", accountHandler.List)
				accounts.GET("/:accountNumber", accountHandler.Get)
				accounts.DELETE("/:accountNumber", accountHandler.Delete)
			}

			transactions := authed.Group("/transactions")
			{
				transactions.POST("/deposit", txnHandler.Deposit)
				transactions.POST("/withdraw", txnHandler.Withdraw)
				transactions.POST("/transfer", txnHandler.Transfer)
				transactions.GET("/account/:accountNumber", txnHandler.History)
			}
		}
	}

	return r
}
