package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-monitor-bot/internal/monitor/config"
	delivery "stock-monitor-bot/internal/monitor/delivery/http"
	"stock-monitor-bot/internal/monitor/repository"
	"stock-monitor-bot/internal/monitor/scheduler"
	"stock-monitor-bot/internal/monitor/service"
	"stock-monitor-bot/pkg/logger"
	"stock-monitor-bot/pkg/postgres"
	redisPkg "stock-monitor-bot/pkg/redis"
	"stock-monitor-bot/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the stock monitor service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Stock Monitor", logger.Field("name", cfg.App.Name))

	// Watchlist
	watchlistRepo, err := repository.NewWatchlistRepository(cfg.Monitor.WatchlistFile)
	if err != nil {
		appLogger.Fatal("Failed to load watchlist", logger.ErrorField(err))
	}

	// Position and alert stores: PostgreSQL when enabled, in-memory
	// otherwise.
	var (
		positionsRepo repository.PositionsRepository
		alertsRepo    repository.AlertsRepository
	)
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			defer sqlDB.Close()
		}
		positionsRepo = repository.NewPositionsRepository(db.DB)
		alertsRepo = repository.NewAlertsRepository(db.DB)
	} else {
		appLogger.Info("Database disabled, using in-memory position and alert stores")
		positionsRepo = repository.NewMemoryPositionsRepository()
		alertsRepo = repository.NewMemoryAlertsRepository(1000)
	}

	// Redis (optional): last-price cache and alert cooldown.
	var redisClient *redisPkg.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisPkg.NewClient(redisPkg.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
	}

	// Telegram
	notifier := telegram.NewDisabledNotifier()
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		notifier, err = telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram client", logger.ErrorField(err))
		}
	} else {
		appLogger.Warn("TELEGRAM_TOKEN / TELEGRAM_CHAT_ID not set, notifications disabled")
	}

	// Services
	quoteRepo := repository.NewYahooFinanceRepository(cfg, appLogger)
	tracker := service.NewPositionTracker(watchlistRepo, positionsRepo, appLogger)
	evaluator := service.NewEvaluator(cfg.Monitor.WatchBandPercent)
	throttle := service.NewAlertThrottle(appLogger, cfg.Monitor.AlertCooldown, cfg.Monitor.AlertResendThresholdPercent, redisClient)
	marketHours := service.NewMarketHours(cfg.Market.OpenHourUTC, cfg.Market.CloseHourUTC)
	monitorSvc := service.NewMonitorService(watchlistRepo, quoteRepo, alertsRepo, tracker, evaluator, throttle, notifier, marketHours, redisClient, appLogger)

	// Optional in-process scheduler
	if cfg.Scheduler.Enabled {
		runner := scheduler.New(cfg.Scheduler.Cron, monitorSvc, appLogger)
		if err := runner.Start(); err != nil {
			appLogger.Fatal("Failed to start scheduler", logger.ErrorField(err))
		}
		defer runner.Stop()
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	delivery.NewDashboardHandler().RegisterRoutes(e)
	delivery.NewMonitorHandler(monitorSvc, watchlistRepo, notifier, appLogger).RegisterRoutes(e)
	delivery.NewPositionHandler(tracker, quoteRepo, notifier, appLogger).RegisterRoutes(e)
	delivery.NewWatchlistHandler(watchlistRepo, notifier, appLogger).RegisterRoutes(e)
	delivery.NewTelegramHandler(monitorSvc, watchlistRepo, tracker, notifier, cfg, appLogger).RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	monitorSvc.AnnounceStartup(ctx)

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "stock-monitor"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing stock-monitor CLI: %s\n", err)
		os.Exit(1)
	}
}
