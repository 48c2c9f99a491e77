// Package main applies database schema migrations.
//
// Usage:
//
//	migrate up              apply all pending migrations
//	migrate down            roll back the most recent migration
//	migrate version         print the current schema version
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	"kasira/migrations"
	"kasira/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Println("usage: migrate <up|down|version>")
		os.Exit(2)
	}
	command := os.Args[1]

	dsn := mustEnv("DATABASE_URL")

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatalw("failed to load embedded migrations", "error", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("no migrations to apply")
				return
			}
			log.Fatalw("migration up failed", "error", err)
		}
		version, _, _ := m.Version()
		log.Infow("migrations applied", "version", version)

	case "down":
		if err := m.Steps(-1); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("nothing to roll back")
				return
			}
			log.Fatalw("migration down failed", "error", err)
		}
		log.Info("rolled back one migration")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Info("no migrations applied yet")
				return
			}
			log.Fatalw("failed to read version", "error", err)
		}
		log.Infow("current schema version", "version", version, "dirty", dirty)

	default:
		fmt.Printf("unknown command %q\n", command)
		fmt.Println("usage: migrate <up|down|version>")
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
