package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"almabot/config"
	"almabot/internal/adapters/binanceclient"
	"almabot/internal/adapters/execution"
	"almabot/internal/adapters/logger"
	"almabot/internal/adapters/sqlite"
	"almabot/internal/app"
	"almabot/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (SQLite Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		os.Exit(1)
	}
	defer repo.Close()

	// 4. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:               cfg.APIKey,
		SecretKey:            cfg.SecretKey,
		UseTestnet:           cfg.IsTestnet,
		Logger:               appLogger,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		os.Exit(1)
	}

	// 5. Initialize Order Executor
	var executor ports.OrderExecutor
	if cfg.DryRun {
		executor, err = execution.NewDryRun(appLogger)
	} else {
		executor, err = execution.NewLive(execution.LiveConfig{
			Client:  binanceClient,
			Logger:  appLogger,
			LotSize: cfg.LotSize,
		})
	}
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize order executor")
		os.Exit(1)
	}

	// 6. Initialize Application Service
	service, err := app.NewTradingService(cfg, appLogger, binanceClient, executor, repo, repo)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trading service")
		os.Exit(1)
	}

	// 7. Run until interrupted
	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := service.Start(runCtx); err != nil {
		appLogger.Error(ctx, err, "Trading service exited with error")
		os.Exit(1)
	}
	appLogger.Info(ctx, "Shutdown complete")
}
