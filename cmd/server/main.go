// Package main is the entry point for the Kasira API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kasira/internal/domain/account"
	"kasira/internal/domain/advance"
	"kasira/internal/domain/auth"
	"kasira/internal/domain/cashflow"
	"kasira/internal/domain/ledger"
	"kasira/internal/domain/material"
	"kasira/internal/domain/product"
	"kasira/internal/domain/purchase"
	"kasira/internal/domain/repair"
	"kasira/internal/domain/trade"
	v1 "kasira/internal/infrastructure/http/v1"
	"kasira/internal/infrastructure/storage/postgres"
	"kasira/internal/infrastructure/storage/postgres/account_repo"
	"kasira/internal/infrastructure/storage/postgres/advance_repo"
	"kasira/internal/infrastructure/storage/postgres/catalog_repo"
	"kasira/internal/infrastructure/storage/postgres/ledger_repo"
	"kasira/internal/infrastructure/storage/postgres/material_repo"
	"kasira/internal/infrastructure/storage/postgres/purchase_repo"
	"kasira/internal/infrastructure/storage/postgres/trade_repo"
	"kasira/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting kasira server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Business timezone ---
	// Cash days roll over at midnight in this zone, not UTC.
	tzName := getEnv("APP_TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalw("invalid APP_TIMEZONE", "timezone", tzName, "error", err)
	}

	// --- Repositories ---
	accountRepo := account_repo.NewRepo(txManager)
	ledgerRepo := ledger_repo.NewRepo(txManager)
	materialRepo := material_repo.NewRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	tradeRepo := trade_repo.NewOrderRepo(txManager)
	purchaseRepo := purchase_repo.NewOrderRepo(txManager)
	advanceRepo := advance_repo.NewRepo(txManager)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Services ---
	accountService := account.NewService(accountRepo)
	ledgerService := ledger.NewService(ledgerRepo, accountRepo, txManager)
	cashflowService := cashflow.NewService(accountRepo, ledgerRepo, loc)
	materialService := material.NewService(materialRepo, txManager)
	productService := product.NewService(productRepo, txManager)
	tradeService := trade.NewService(tradeRepo, productRepo, materialService, ledgerService, txManager)
	purchaseService := purchase.NewService(purchaseRepo, materialService, ledgerService, txManager)
	advanceService := advance.NewService(advanceRepo, ledgerService, txManager)
	repairService := repair.NewService(ledgerRepo, accountRepo, tradeRepo, txManager, auditService, loc)

	// --- JWT ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:     pool,
		Logger:   log,
		JWT:      jwtService,
		Location: loc,
		Audit:    auditService,

		Accounts:  accountService,
		Ledger:    ledgerService,
		Cashflow:  cashflowService,
		Materials: materialService,
		Products:  productService,
		Trade:     tradeService,
		Purchase:  purchaseService,
		Advances:  advanceService,
		Repair:    repairService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port, "timezone", tzName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
