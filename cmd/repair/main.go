// Package main runs ledger repair utilities from the command line, for
// operators who prefer a shell over the admin HTTP endpoints.
//
// Usage:
//
//	repair backfill [-date YYYY-MM-DD]   synthesize missing order payment entries
//	repair cleanup                       delete entries referencing missing orders
//	repair verify                        report accounts whose balance drifted
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"kasira/internal/domain/repair"
	"kasira/internal/infrastructure/storage/postgres"
	"kasira/internal/infrastructure/storage/postgres/account_repo"
	"kasira/internal/infrastructure/storage/postgres/ledger_repo"
	"kasira/internal/infrastructure/storage/postgres/trade_repo"
	"kasira/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Println("usage: repair <backfill|cleanup|verify>")
		os.Exit(2)
	}
	command := os.Args[1]

	tzName := getEnv("APP_TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalw("invalid APP_TIMEZONE", "timezone", tzName, "error", err)
	}

	// No actor in a CLI run; ActorOrSystem attributes writes to "system".
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	service := repair.NewService(
		ledger_repo.NewRepo(txManager),
		account_repo.NewRepo(txManager),
		trade_repo.NewOrderRepo(txManager),
		txManager,
		auditService,
		loc,
	)

	switch command {
	case "backfill":
		fs := flag.NewFlagSet("backfill", flag.ExitOnError)
		dateStr := fs.String("date", "", "cash day to backfill (YYYY-MM-DD, default today)")
		_ = fs.Parse(os.Args[2:])

		day := time.Now().In(loc)
		if *dateStr != "" {
			day, err = time.ParseInLocation("2006-01-02", *dateStr, loc)
			if err != nil {
				log.Fatalw("invalid -date", "value", *dateStr, "error", err)
			}
		}

		result, err := service.BackfillOrderPayments(ctx, day)
		if err != nil {
			log.Fatalw("backfill failed", "error", err)
		}
		log.Infow("backfill finished",
			"day", day.Format("2006-01-02"),
			"scanned", result.Scanned,
			"inserted", result.Inserted,
			"skipped", result.Skipped,
		)

	case "cleanup":
		result, err := service.CleanupOrphanEntries(ctx)
		if err != nil {
			log.Fatalw("cleanup failed", "error", err)
		}
		log.Infow("cleanup finished", "scanned", result.Scanned, "deleted", result.Deleted)

	case "verify":
		drifts, err := service.VerifyBalances(ctx)
		if err != nil {
			log.Fatalw("verification failed", "error", err)
		}
		if len(drifts) == 0 {
			log.Info("all account balances match the ledger")
			return
		}
		for _, d := range drifts {
			log.Warnw("balance drift",
				"account", d.AccountName,
				"account_id", d.AccountID,
				"snapshot", d.Snapshot,
				"recomputed", d.Recomputed,
				"difference", d.Difference,
			)
		}
		os.Exit(1)

	default:
		fmt.Printf("unknown command %q\n", command)
		fmt.Println("usage: repair <backfill|cleanup|verify>")
		os.Exit(2)
	}
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
