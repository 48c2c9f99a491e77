// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"kasira/internal/domain/account"
	"kasira/internal/domain/advance"
	"kasira/internal/domain/cashflow"
	"kasira/internal/domain/ledger"
	"kasira/internal/domain/material"
	"kasira/internal/domain/product"
	"kasira/internal/domain/purchase"
	"kasira/internal/domain/repair"
	"kasira/internal/domain/trade"
	"kasira/internal/infrastructure/http/v1/handlers"
	"kasira/internal/infrastructure/http/v1/middleware"
	"kasira/internal/infrastructure/storage/postgres"
	"kasira/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool     *postgres.Pool
	Logger   *logger.Logger
	JWT      middleware.TokenValidator
	Location *time.Location
	Audit    *postgres.AuditService

	Accounts  *account.Service
	Ledger    *ledger.Service
	Cashflow  *cashflow.Service
	Materials *material.Service
	Products  *product.Service
	Trade     *trade.Service
	Purchase  *purchase.Service
	Advances  *advance.Service
	Repair    *repair.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool.Unwrap())
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	accountHandler := handlers.NewAccountHandler(base, cfg.Accounts)
	ledgerHandler := handlers.NewLedgerHandler(base, cfg.Ledger, cfg.Location)
	cashflowHandler := handlers.NewCashflowHandler(base, cfg.Cashflow, cfg.Location)
	materialHandler := handlers.NewMaterialHandler(base, cfg.Materials, cfg.Location)
	productHandler := handlers.NewProductHandler(base, cfg.Products)
	tradeHandler := handlers.NewTradeHandler(base, cfg.Trade, cfg.Location)
	purchaseHandler := handlers.NewPurchaseHandler(base, cfg.Purchase, cfg.Location)
	advanceHandler := handlers.NewAdvanceHandler(base, cfg.Advances)
	repairHandler := handlers.NewRepairHandler(base, cfg.Repair, cfg.Location)
	auditHandler := handlers.NewAuditHandler(base, cfg.Audit)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWT))
	{
		accounts := api.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/:id", accountHandler.Get)
			accounts.PUT("/:id", accountHandler.Update)
		}

		ledgerGroup := api.Group("/ledger")
		{
			ledgerGroup.GET("", ledgerHandler.List)
			ledgerGroup.POST("/in", ledgerHandler.RecordIn)
			ledgerGroup.POST("/out", ledgerHandler.RecordOut)
			ledgerGroup.POST("/transfer", ledgerHandler.Transfer)
		}

		cashflowGroup := api.Group("/cashflow")
		{
			cashflowGroup.GET("/today", cashflowHandler.Today)
			cashflowGroup.GET("/day", cashflowHandler.Day)
			cashflowGroup.GET("/range", cashflowHandler.Range)
		}

		materials := api.Group("/materials")
		{
			materials.POST("", materialHandler.Create)
			materials.GET("", materialHandler.List)
			materials.GET("/movements", materialHandler.Movements)
			materials.GET("/:id", materialHandler.Get)
			materials.PUT("/:id", materialHandler.Update)
			materials.POST("/:id/adjust", materialHandler.Adjust)
		}

		products := api.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", tradeHandler.Create)
			orders.GET("", tradeHandler.List)
			orders.GET("/:id", tradeHandler.Get)
			orders.POST("/:id/status", tradeHandler.ChangeStatus)
			orders.POST("/:id/payments", tradeHandler.RecordPayment)
		}

		purchaseOrders := api.Group("/purchase-orders")
		{
			purchaseOrders.POST("", purchaseHandler.Create)
			purchaseOrders.GET("", purchaseHandler.List)
			purchaseOrders.GET("/:id", purchaseHandler.Get)
			purchaseOrders.POST("/:id/pay", purchaseHandler.Pay)
			purchaseOrders.POST("/:id/receive", purchaseHandler.Receive)
		}

		advances := api.Group("/advances")
		{
			advances.POST("", advanceHandler.Issue)
			advances.GET("", advanceHandler.List)
			advances.GET("/:id", advanceHandler.Get)
			advances.POST("/:id/repay", advanceHandler.Repay)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole("admin"))
		{
			repairGroup := admin.Group("/repair")
			{
				repairGroup.POST("/backfill", repairHandler.Backfill)
				repairGroup.POST("/cleanup", repairHandler.Cleanup)
				repairGroup.GET("/verify-balances", repairHandler.VerifyBalances)
			}

			admin.GET("/audit/:entityType/:entityId", auditHandler.History)
		}
	}

	return router
}
