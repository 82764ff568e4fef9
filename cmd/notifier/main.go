package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dailycheer/cheer-notifier/internal/api"
	"github.com/dailycheer/cheer-notifier/internal/app"
	"github.com/dailycheer/cheer-notifier/internal/conf"
	"github.com/dailycheer/cheer-notifier/internal/logging"
	"github.com/dailycheer/cheer-notifier/internal/service"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg := conf.LoadFromEnv()
	logger := logging.NewLoggerWithService("cheer-notifier", cfg.LogLevel, cfg.Debug)
	if envErr != nil {
		logger.Debug("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to start engine")
	}
	defer engine.Close()

	scheduler := service.NewScheduler(engine.Delivery, engine.Repos.Settings, nil, logger)
	if err := scheduler.Start(ctx); err != nil {
		// A later settings edit or /api/reload can still arm the slots
		logger.WithError(err).Error("failed to arm slots")
	}

	watcher := service.NewSettingsWatcher(cfg.Store.SettingsPath, scheduler, 0, logger)
	if err := watcher.Start(ctx); err != nil {
		logger.WithError(err).Warn("settings watcher disabled")
	}

	var apiServer *api.Server
	if cfg.API.Port > 0 {
		apiServer = api.NewServer(scheduler, engine.Ledger, engine.Selection, engine.Characters, cfg.API.Port, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.WithError(err).Error("API server stopped")
			}
		}()
		logger.WithField("port", cfg.API.Port).Info("admin API listening")
	}

	logger.Info("cheer notifier running")
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if apiServer != nil {
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.WithError(err).Warn("API server shutdown")
		}
	}
	watcher.Stop()
	scheduler.Stop()
}
