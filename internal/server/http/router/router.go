package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/B3hnamR/viranumpro/internal/server/http/handlers"
	"github.com/B3hnamR/viranumpro/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.NumberFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	gatewayHandler := handlers.NewGatewayHandler(facade)
	purchaseHandler := handlers.NewPurchaseHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	notifyHandler := handlers.NewNotifyHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	api.POST("/gateway/token", gatewayHandler.Token)
	api.GET("/catalog/prices", catalogHandler.Prices)
	api.GET("/catalog/countries", catalogHandler.Countries)

	gateway := api.Group("")
	gateway.Use(middleware.GatewayRequired(facade))
	gateway.GET("/notifications/stream", notifyHandler.Stream)
	gateway.GET("/profile", catalogHandler.Profile)

	owner := api.Group("")
	owner.Use(middleware.AuthRequired(facade))
	owner.POST("/purchase", purchaseHandler.Start)
	owner.POST("/purchase/reply", purchaseHandler.Reply)
	owner.POST("/purchase/cancel", purchaseHandler.Cancel)
	owner.GET("/orders", orderHandler.List)
	owner.GET("/orders/:id", orderHandler.Get)
	owner.POST("/orders/:id/:action", orderHandler.Control)

	return engine
}
