package routes

import (
	"net/http"

	"encomendas_backend/internal/auth"
	"encomendas_backend/internal/handlers"
	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/middleware"
	"encomendas_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	tokens *auth.TokenManager,
	gatherer prometheus.Gatherer,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ginRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Регистрация HTTP API v1, все маршруты требуют токен
	api := ginRouter.Group("/api/v1", middleware.AuthMiddleware(tokens))
	{
		appHandlers.CondominiumHandler.RegisterRoutes(api)
		appHandlers.ResidentHandler.RegisterRoutes(api)
		appHandlers.LabelHandler.RegisterRoutes(api)
		appHandlers.PackageHandler.RegisterRoutes(api)
		appHandlers.FileHandler.RegisterRoutes(api)
	}

	// Регистрация WebSocket (токен в ?token=)
	ginRouter.GET("/ws", middleware.AuthMiddleware(tokens), wsHandler.ServeWS)
	logger.Info("WebSocket route /ws registered")
}
