/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the login-bonus engine server.

STARTUP SEQUENCE:
  1. Load config from the environment (.env honored)
  2. Build the zap logger
  3. Open the SQLite store
  4. Build the holiday table (file-backed or built-in)
  5. Construct the engine (loads + reconciles persisted state)
  6. Start the refresh scheduler and HTTP server

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the refresh scheduler
  4. Close the database

ENVIRONMENT:
  PORT, DATABASE_PATH (":memory:" supported), HOLIDAY_FILE, LOG_LEVEL,
  REFRESH_INTERVAL, CORS_ORIGINS. See config/config.go.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/bonus-engine/api"
	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/calendar"
	"github.com/warp/bonus-engine/config"
	"github.com/warp/bonus-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	holidays := holidayCalendar(cfg, logger)

	engine, err := bonus.New(context.Background(), bonus.Options{
		Persistence: store,
		Events:      store,
		Holidays:    holidays,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Failed to initialize engine", zap.Error(err))
	}

	scheduler := api.NewRefreshScheduler(engine, logger)
	scheduler.CheckInterval = cfg.RefreshEvery
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(engine, store, logger)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Port),
			zap.String("db", cfg.DatabasePath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return cfg.Build()
}

func holidayCalendar(cfg *config.Config, logger *zap.Logger) calendar.HolidayCalendar {
	if cfg.HolidayFile == "" {
		return calendar.DefaultJapaneseHolidays()
	}
	table, err := calendar.LoadTable(cfg.HolidayFile, logger)
	if err != nil {
		logger.Warn("Failed to load holiday file, using built-in table",
			zap.String("file", cfg.HolidayFile), zap.Error(err))
		return calendar.DefaultJapaneseHolidays()
	}
	return table
}
