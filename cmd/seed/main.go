package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/seed"
	"go.uber.org/zap"
)

func main() {
	var (
		demo      int
		fakerSeed uint64
	)
	flag.IntVar(&demo, "demo", 0, "Also create this many fake customers with orders")
	flag.Uint64Var(&fakerSeed, "faker-seed", 0, "Seed for the fake data generator (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.GormLevel("warn"), time.Second)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	seeder := seed.New(db, fakerSeed, log)
	if _, err := seeder.EnsureAdmin(ctx, cfg.Seed); err != nil {
		log.Fatal("Failed to seed admin user", zap.Error(err))
	}

	if demo > 0 {
		if _, _, err := seeder.Demo(ctx, demo); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}
}
