// Imports a trade history CSV (as produced by export_trades) into the
// database, preserving the original timestamps. Usage:
//
//	import_trades <file.csv>
package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"

	"runtimetrade/config"
	"runtimetrade/internal/adapters/logger"
	"runtimetrade/internal/adapters/sqlite"
	"runtimetrade/internal/portfolio"
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

	trades, err := utils.ReadTradesFromCSV(os.Args[1])
	if err != nil {
		log.Fatalf("Error reading CSV: %v", err)
	}

	ctx := context.Background()
	for _, t := range trades {
		t.ID = uuid.NewString()
		t.UserID = cfg.UserID
		if t.Shares <= 0 || t.Price <= 0 {
			appLogger.Warn(ctx, "Skipping invalid row", map[string]interface{}{"ticker": t.Ticker})
			continue
		}
		if t.Commission <= 0 {
			t.Commission = portfolio.Commission(t.Shares)
		}
		if err := repo.CreateTrade(ctx, t); err != nil {
			log.Fatalf("Error inserting trade for %s: %v", t.Ticker, err)
		}
	}
	appLogger.Info(ctx, "Import complete", map[string]interface{}{"count": len(trades), "file": os.Args[1]})
}
