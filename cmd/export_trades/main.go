// Exports the full trade history to a CSV file. Usage:
//
//	export_trades <file.csv>
package main

import (
	"context"
	"log"
	"os"

	"runtimetrade/config"
	"runtimetrade/internal/adapters/logger"
	"runtimetrade/internal/adapters/sqlite"
	"runtimetrade/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <file.csv>", os.Args[0])
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	trades, err := repo.ListTrades(ctx, cfg.UserID)
	if err != nil {
		log.Fatalf("Error loading trades: %v", err)
	}
	if err := utils.WriteTradesToCSV(trades, os.Args[1]); err != nil {
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Export complete", map[string]interface{}{"count": len(trades), "file": os.Args[1]})
}
