package http

import (
	"github.com/gin-gonic/gin"

	"github.com/stockroom/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	RegisterValidations()

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes, all behind the trusted-header auth middleware
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware())
	{
		products := v1.Group("/products")
		{
			products.POST("/lookup", handler.LookupProduct)
		}

		branches := v1.Group("/branches")
		{
			branches.POST("", handler.CreateBranch)
			branches.GET("", handler.ListBranches)
			branches.GET("/:id", handler.GetBranch)
			branches.PUT("/:id", handler.UpdateBranch)
			branches.DELETE("/:id", handler.DeleteBranch)
			branches.GET("/:id/items", handler.ListItems)
		}

		items := v1.Group("/items")
		{
			items.POST("", handler.CreateItem)
			items.GET("/:id", handler.GetItem)
			items.PUT("/:id", handler.UpdateItem)
			items.DELETE("/:id", handler.DeleteItem)
			items.POST("/adjust", handler.AdjustStock)
		}

		orders := v1.Group("/purchase-orders")
		{
			orders.POST("", handler.CreatePurchaseOrder)
			orders.GET("", handler.ListPurchaseOrders)
			orders.GET("/:id", handler.GetPurchaseOrder)
			orders.POST("/:id/submit", handler.SubmitPurchaseOrder)
			orders.POST("/:id/receive", handler.ReceivePurchaseOrder)
			orders.POST("/:id/cancel", handler.CancelPurchaseOrder)
		}

		transfers := v1.Group("/transfers")
		{
			transfers.POST("", handler.CreateTransfer)
			transfers.GET("", handler.ListTransfers)
			transfers.GET("/:id", handler.GetTransfer)
			transfers.POST("/:id/dispatch", handler.DispatchTransfer)
			transfers.POST("/:id/receive", handler.ReceiveTransfer)
			transfers.POST("/:id/cancel", handler.CancelTransfer)
		}
	}

	return router
}
