package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"
	"time"

	"runtimetrade/config"
	"runtimetrade/internal/adapters/binancequote"
	"runtimetrade/internal/adapters/logger"
	"runtimetrade/internal/adapters/sqlite"
	"runtimetrade/internal/adapters/yahooquote"
	"runtimetrade/internal/app"
	"runtimetrade/internal/ports"
	"runtimetrade/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(context.Background(), "Database repository initialized")

	// 4. Initialize Quote Provider
	var quotes ports.QuoteProvider
	switch cfg.QuoteProvider {
	case config.QuoteProviderBinance:
		quotes, err = binancequote.New(binancequote.Config{Logger: appLogger})
	default:
		quotes, err = yahooquote.New(yahooquote.Config{
			Logger:   appLogger,
			Timeout:  cfg.QuoteHTTPTimeout,
			CacheTTL: cfg.QuoteCacheTTL,
		})
	}
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize quote provider")
		log.Fatalf("FATAL: Failed to initialize quote provider: %v", err)
	}
	appLogger.Info(context.Background(), "Quote provider initialized", map[string]interface{}{"provider": cfg.QuoteProvider})

	// 5. Initialize Application Service
	portfolioService, err := app.NewPortfolioService(cfg, appLogger, repo, repo, quotes)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize portfolio service")
		log.Fatalf("FATAL: Failed to initialize portfolio service: %v", err)
	}
	if err := portfolioService.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to start portfolio service")
		log.Fatalf("FATAL: Failed to start portfolio service: %v", err)
	}
	defer portfolioService.Stop()
	appLogger.Info(context.Background(), "Portfolio service initialized")

	// 6. Start the HTTP Server
	srv := server.New(cfg, appLogger, portfolioService)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(context.Background())
	}()

	// 7. Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Info(context.Background(), "Shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			appLogger.Error(context.Background(), err, "HTTP server exited with error")
			log.Fatalf("FATAL: HTTP server exited with error: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(context.Background(), err, "Error during HTTP server shutdown")
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
